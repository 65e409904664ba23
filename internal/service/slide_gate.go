package service

import (
	"fmt"
	"safety_training_backend/internal/model"
	"safety_training_backend/internal/util"
	"safety_training_backend/pkg/logger"
	"sync"
	"time"

	"go.uber.org/zap"
)

type GateState int

const (
	GateLoading GateState = iota
	GateGated
	GateUnlocked
)

// SlideSession 一次打开培训的幻灯片观看会话。
// 状态机 {Loading, Gated(剩余秒数), Unlocked}：进入未看过的幻灯片时锁定，
// 由每秒一次的协作式 Tick 递减到 0 后解锁；已看过的幻灯片和已完成的培训不设门控。
type SlideSession struct {
	mu sync.Mutex

	durations      []int // 每张幻灯片的最短停留秒数
	currentSlide   int
	highestVisited int
	timeRemaining  int
	state          GateState
	completed      bool // 培训已完成：复看模式，完全绕过门控

	done     chan struct{}
	stopOnce sync.Once
}

// NewSlideSession 打开会话。未完成的报名从持久化的断点位置恢复；
// 已完成的报名总是从第 0 张开始复看。
func NewSlideSession(enrollment *model.Enrollment, slides []model.Slide) *SlideSession {
	durations := make([]int, len(slides))
	for i := range slides {
		durations[i] = slides[i].DwellSeconds()
	}

	s := &SlideSession{
		durations: durations,
		state:     GateLoading,
		completed: enrollment.Status == model.EnrollmentCompleted,
		done:      make(chan struct{}),
	}

	if len(durations) == 0 {
		// 没有幻灯片时门控为空操作，直接视为解锁
		s.state = GateUnlocked
		return s
	}

	start := 0
	if !s.completed {
		start = enrollment.CurrentSlide
		if start < 0 || start >= len(durations) {
			start = 0
		}
		// 恢复位置之前的幻灯片都算看过
		s.highestVisited = start
	}
	s.enterLocked(start)
	return s
}

// enterLocked 进入第 i 张幻灯片，调用方需持锁（构造时除外）
func (s *SlideSession) enterLocked(i int) {
	s.currentSlide = i
	if i > s.highestVisited {
		s.highestVisited = i
	}
	if s.completed || i < s.highestVisited {
		s.state = GateUnlocked
		s.timeRemaining = 0
		return
	}
	s.timeRemaining = s.durations[i]
	if s.timeRemaining <= 0 {
		s.state = GateUnlocked
	} else {
		s.state = GateGated
	}
}

// Tick 每秒一次的协作式计时；Gated 之外的状态下是空操作
func (s *SlideSession) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != GateGated {
		return
	}
	s.timeRemaining--
	if s.timeRemaining <= 0 {
		s.timeRemaining = 0
		s.state = GateUnlocked
	}
}

func (s *SlideSession) CanProceed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == GateUnlocked
}

// Snapshot 返回当前门控状态，供接口回显
func (s *SlideSession) Snapshot() (currentSlide, timeRemaining int, canProceed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSlide, s.timeRemaining, s.state == GateUnlocked
}

// RequestAdvance 请求切换到目标幻灯片。接受条件：培训已完成，
// 或目标已经看过（index ≤ 最高访问位置），或当前幻灯片已解锁。
func (s *SlideSession) RequestAdvance(target int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.durations) == 0 {
		return util.NewValidationError("training has no slides")
	}
	if target < 0 || target >= len(s.durations) {
		return util.NewValidationError(fmt.Sprintf("invalid slide index %d", target))
	}

	if s.completed || target <= s.highestVisited || s.state == GateUnlocked {
		s.enterLocked(target)
		return nil
	}

	return util.NewValidationError("minimum viewing time for this slide has not elapsed")
}

// CurrentSlide 供持久化 track 调用读取
func (s *SlideSession) CurrentSlide() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSlide
}

func (s *SlideSession) close() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// SlideGateService 管理活跃会话和它们的秒级计时器。
// 每个会话一个计时协程，会话关闭或被同键新会话替换时立即停止，不留孤儿计时器。
type SlideGateService struct {
	mu       sync.Mutex
	sessions map[string]*SlideSession
}

func NewSlideGateService() *SlideGateService {
	return &SlideGateService{
		sessions: make(map[string]*SlideSession),
	}
}

func sessionKey(workerID, trainingID uint) string {
	return fmt.Sprintf("%d:%d", workerID, trainingID)
}

// Open 打开（或重新打开）会话并启动计时协程
func (g *SlideGateService) Open(workerID uint, enrollment *model.Enrollment, slides []model.Slide) *SlideSession {
	key := sessionKey(workerID, enrollment.TrainingID)

	session := NewSlideSession(enrollment, slides)

	g.mu.Lock()
	if old, ok := g.sessions[key]; ok {
		old.close()
	}
	g.sessions[key] = session
	g.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-session.done:
				return
			case <-ticker.C:
				session.Tick()
			}
		}
	}()

	logger.Log.Debug("slide session opened",
		zap.Uint("workerId", workerID),
		zap.Uint("trainingId", enrollment.TrainingID))

	return session
}

// Get 返回活跃会话，没有时返回 nil
func (g *SlideGateService) Get(workerID, trainingID uint) *SlideSession {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessions[sessionKey(workerID, trainingID)]
}

// Close 关闭会话并停止计时器
func (g *SlideGateService) Close(workerID, trainingID uint) {
	key := sessionKey(workerID, trainingID)
	g.mu.Lock()
	defer g.mu.Unlock()
	if session, ok := g.sessions[key]; ok {
		session.close()
		delete(g.sessions, key)
	}
}
