package service

import (
	"math"
	"safety_training_backend/internal/model"
	"strconv"
)

// QuizRandomizer 为每名员工生成稳定的个人题目/选项顺序：同一 (员工, 培训)
// 在任何时间、任何进程里重洗结果完全一致，重考时看到的卷面不变；
// 不同员工之间顺序不同，降低互相对答案的价值。
type QuizRandomizer struct{}

func NewQuizRandomizer() *QuizRandomizer {
	return &QuizRandomizer{}
}

// ShuffleSeed 对 "workerKey-trainingKey" 做 32 位滚动哈希：
// h = (h<<5) - h + c，按有符号 32 位截断后取绝对值。
func ShuffleSeed(workerKey, trainingKey string) int64 {
	key := workerKey + "-" + trainingKey
	var h int32
	for i := 0; i < len(key); i++ {
		h = (h << 5) - h + int32(key[i])
	}
	if h < 0 {
		h = -h
	}
	return int64(h)
}

// seededRand 正弦伪随机数生成器。历史卷面顺序必须逐位保持，
// 因此保留 sin 公式而不是换成标准 PRNG。
type seededRand struct {
	state float64
}

func newSeededRand(seed int64) *seededRand {
	return &seededRand{state: float64(seed)}
}

// next 返回 [0,1) 区间内的伪随机数
func (r *seededRand) next() float64 {
	r.state = math.Sin(r.state) * 10000
	return r.state - math.Floor(r.state)
}

// fisherYates 原地洗牌
func fisherYates(n int, rnd *seededRand, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(rnd.next() * float64(i+1))
		swap(i, j)
	}
}

// Shuffle 返回题目的个人固定顺序副本：题目整体按 seed 洗牌，
// 每道题的选项再按 seed+位置+1000 独立洗牌，避免选项顺序与题目顺序相关。
func (z *QuizRandomizer) Shuffle(questions []model.Question, workerKey string, trainingID uint) []model.Question {
	seed := ShuffleSeed(workerKey, strconv.FormatUint(uint64(trainingID), 10))

	shuffled := make([]model.Question, len(questions))
	copy(shuffled, questions)

	rnd := newSeededRand(seed)
	fisherYates(len(shuffled), rnd, func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	for qi := range shuffled {
		options := make([]model.QuestionOption, len(shuffled[qi].Options))
		copy(options, shuffled[qi].Options)

		optRnd := newSeededRand(seed + int64(qi) + 1000)
		fisherYates(len(options), optRnd, func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})
		shuffled[qi].Options = options
	}

	return shuffled
}
