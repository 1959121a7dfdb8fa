package interview

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/usecase/session"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	FeatureQuestions  = "questions"
	FeatureEvaluation = "evaluation"

	DefaultQuestionCount = 3
)

// Coordinator owns the interview question batch and the answers and
// evaluations keyed by question index.
type Coordinator struct {
	gateway      Gateway
	gate         SessionGate
	dictation    Dictation
	history      HistoryRecorder
	maxQuestions int
	onEvaluated  func(ctx context.Context, index int, ev *entity.Evaluation)

	mu          sync.Mutex
	questions   []entity.Question
	batch       uint64
	batchReq    uint64
	active      int
	answers     map[int]entity.Answer
	evaluations map[int]*entity.Evaluation
	inFlight    map[int]bool

	evals singleflight.Group
}

func NewCoordinator(
	gateway Gateway,
	gate SessionGate,
	dictation Dictation,
	history HistoryRecorder,
	maxQuestions int,
) *Coordinator {
	return &Coordinator{
		gateway:      gateway,
		gate:         gate,
		dictation:    dictation,
		history:      history,
		maxQuestions: maxQuestions,
		answers:      make(map[int]entity.Answer),
		evaluations:  make(map[int]*entity.Evaluation),
		inFlight:     make(map[int]bool),
	}
}

// OnEvaluated registers a hook called after an evaluation is stored
func (c *Coordinator) OnEvaluated(fn func(ctx context.Context, index int, ev *entity.Evaluation)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onEvaluated = fn
}

// GenerateBatch replaces the question batch. Answers and evaluations of the
// previous batch are discarded only when the new batch arrives.
func (c *Coordinator) GenerateBatch(ctx context.Context, count int) ([]entity.Question, error) {
	ticket, err := c.gate.RequireTicket()
	if err != nil {
		return nil, err
	}

	if count == 0 {
		count = DefaultQuestionCount
	}
	if count < 1 || count > c.maxQuestions {
		return nil, fmt.Errorf("%w: num_questions must be between 1 and %d, got %d", entity.ErrInvalidParameter, c.maxQuestions, count)
	}

	c.mu.Lock()
	c.batchReq++
	req := c.batchReq
	c.mu.Unlock()

	resp, err := c.gateway.GenerateQuestions(ctx, &entity.GenerateQuestionsRequest{
		SessionID:    ticket.SessionID,
		NumQuestions: count,
	})
	if err == nil && len(resp.Questions) == 0 {
		err = errors.New("no questions generated")
	}
	if err != nil {
		return nil, &entity.FeatureError{Feature: FeatureQuestions, Kind: entity.ErrGenerationFailed, Err: err}
	}

	questions := make([]entity.Question, len(resp.Questions))
	for i, q := range resp.Questions {
		q.Index = i
		questions[i] = q
	}

	c.mu.Lock()
	if req != c.batchReq || !c.gate.Valid(ticket) {
		c.mu.Unlock()
		ctxzap.Debug(ctx, "dropping superseded question batch")
		return nil, entity.ErrStaleResult
	}
	c.questions = questions
	c.batch++
	c.active = 0
	c.answers = make(map[int]entity.Answer)
	c.evaluations = make(map[int]*entity.Evaluation)
	c.inFlight = make(map[int]bool)
	c.mu.Unlock()

	c.dictation.Reset()

	ctxzap.Info(ctx, "interview batch generated", zap.Int("count", len(questions)))

	return slices.Clone(questions), nil
}

// SelectQuestion makes i the active question and clears the dictation transcript
func (c *Coordinator) SelectQuestion(i int) error {
	c.mu.Lock()
	if err := c.checkIndexLocked(i); err != nil {
		c.mu.Unlock()
		return err
	}
	c.active = i
	c.mu.Unlock()

	c.dictation.Clear()
	return nil
}

// RecordTypedAnswer overwrites the stored answer of question i.
// Existing evaluations are kept.
func (c *Coordinator) RecordTypedAnswer(i int, text string) error {
	return c.RecordAnswer(i, entity.Answer{Mode: entity.AnswerModeText, Content: text})
}

// RecordAnswer overwrites the stored answer of question i
func (c *Coordinator) RecordAnswer(i int, ans entity.Answer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkIndexLocked(i); err != nil {
		return err
	}
	c.answers[i] = ans
	return nil
}

// SubmitVoiceAnswer evaluates the dictation transcript as it is right now
func (c *Coordinator) SubmitVoiceAnswer(ctx context.Context, i int) (*entity.Evaluation, error) {
	return c.SubmitAnswer(ctx, i, entity.Answer{Mode: entity.AnswerModeVoice, Content: c.dictation.Transcript()})
}

// SubmitAnswer stores ans as the answer of question i and evaluates it
func (c *Coordinator) SubmitAnswer(ctx context.Context, i int, ans entity.Answer) (*entity.Evaluation, error) {
	if err := c.Validate(i, ans.Content); err != nil {
		return nil, err
	}
	if err := c.RecordAnswer(i, ans); err != nil {
		return nil, err
	}

	return c.EvaluateAnswer(ctx, i, ans)
}

// EvaluateAnswer evaluates exactly ans.Content for question i without
// touching the stored answer; later edits do not change what is sent.
func (c *Coordinator) EvaluateAnswer(ctx context.Context, i int, ans entity.Answer) (*entity.Evaluation, error) {
	mode := ans.Mode
	if mode == "" {
		mode = entity.AnswerModeText
	}
	return c.submit(ctx, i, ans.Content, mode)
}

// SubmitTypedAnswer evaluates the stored typed answer of question i
func (c *Coordinator) SubmitTypedAnswer(ctx context.Context, i int) (*entity.Evaluation, error) {
	if _, err := c.gate.RequireTicket(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if err := c.checkIndexLocked(i); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	var text string
	if ans, ok := c.answers[i]; ok && ans.Mode == entity.AnswerModeText {
		text = ans.Content
	}
	c.mu.Unlock()

	return c.submit(ctx, i, text, entity.AnswerModeText)
}

// SubmitEvaluation evaluates answerText for question i. A submit while an
// evaluation for i is in flight joins it instead of issuing a second call.
func (c *Coordinator) SubmitEvaluation(ctx context.Context, i int, answerText string) (*entity.Evaluation, error) {
	return c.submit(ctx, i, answerText, entity.AnswerModeText)
}

// Validate reports the error a submit of answerText for question i would
// fail with before any remote call is made.
func (c *Coordinator) Validate(i int, answerText string) error {
	if _, err := c.gate.RequireTicket(); err != nil {
		return err
	}

	if strings.TrimSpace(answerText) == "" {
		return entity.ErrEmptyAnswer
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.checkIndexLocked(i)
}

func (c *Coordinator) submit(ctx context.Context, i int, answerText string, mode entity.AnswerMode) (*entity.Evaluation, error) {
	ticket, err := c.gate.RequireTicket()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(answerText) == "" {
		return nil, entity.ErrEmptyAnswer
	}

	c.mu.Lock()
	if err := c.checkIndexLocked(i); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	question := c.questions[i]
	batch := c.batch
	onEvaluated := c.onEvaluated
	c.mu.Unlock()

	key := strconv.FormatUint(batch, 10) + ":" + strconv.Itoa(i)
	v, err, shared := c.evals.Do(key, func() (any, error) {
		c.setInFlight(batch, i, true)
		defer c.setInFlight(batch, i, false)

		ev, err := c.gateway.EvaluateAnswer(ctx, &entity.EvaluateAnswerRequest{
			SessionID: ticket.SessionID,
			Question:  question.Text,
			Answer:    answerText,
		})
		if err != nil {
			return nil, &entity.FeatureError{Feature: FeatureEvaluation, Kind: entity.ErrEvaluationFailed, Err: err}
		}

		c.mu.Lock()
		if batch != c.batch || !c.gate.Valid(ticket) {
			c.mu.Unlock()
			return nil, entity.ErrStaleResult
		}
		c.evaluations[i] = ev
		c.mu.Unlock()

		c.record(ctx, ticket, question, answerText, mode, ev)
		if onEvaluated != nil {
			onEvaluated(ctx, i, ev)
		}

		return ev, nil
	})
	if shared {
		ctxzap.Debug(ctx, "joined in-flight evaluation", zap.Int("question_index", i))
	}
	if err != nil {
		return nil, err
	}

	return v.(*entity.Evaluation), nil
}

func (c *Coordinator) record(
	ctx context.Context,
	ticket session.Ticket,
	q entity.Question,
	answer string,
	mode entity.AnswerMode,
	ev *entity.Evaluation,
) {
	if c.history == nil {
		return
	}

	attempt := &entity.EvaluationAttempt{
		ID:            uuid.NewString(),
		SessionID:     ticket.SessionID,
		QuestionIndex: q.Index,
		Question:      q.Text,
		Answer:        answer,
		AnswerMode:    mode,
		Score:         ev.Score,
		Verdict:       ev.Verdict,
		Evaluation:    ev,
		CreatedAt:     time.Now().UTC(),
	}
	if err := c.history.RecordAttempt(ctx, attempt); err != nil {
		ctxzap.Warn(ctx, "failed to record evaluation attempt", zap.Error(err))
	}
}

func (c *Coordinator) setInFlight(batch uint64, i int, v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if batch != c.batch {
		return
	}
	if v {
		c.inFlight[i] = true
	} else {
		delete(c.inFlight, i)
	}
}

func (c *Coordinator) checkIndexLocked(i int) error {
	if i < 0 || i >= len(c.questions) {
		return fmt.Errorf("%w: %d (have %d questions)", entity.ErrQuestionOutOfRange, i, len(c.questions))
	}
	return nil
}

// Reset drops the batch and everything keyed by it
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.batchReq++
	c.batch++
	c.questions = nil
	c.active = 0
	c.answers = make(map[int]entity.Answer)
	c.evaluations = make(map[int]*entity.Evaluation)
	c.inFlight = make(map[int]bool)
}

// Active returns the active question, if there is a batch
func (c *Coordinator) Active() (entity.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.questions) == 0 {
		return entity.Question{}, false
	}
	return c.questions[c.active], true
}

// Answer returns the stored answer of question i
func (c *Coordinator) Answer(i int) (entity.Answer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ans, ok := c.answers[i]
	return ans, ok
}

func (c *Coordinator) Evaluation(i int) (*entity.Evaluation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev, ok := c.evaluations[i]
	return ev, ok
}

func (c *Coordinator) Snapshot() entity.InterviewStateDTO {
	c.mu.Lock()
	defer c.mu.Unlock()

	answers := make(map[int]entity.Answer, len(c.answers))
	for k, v := range c.answers {
		answers[k] = v
	}
	evaluations := make(map[int]*entity.Evaluation, len(c.evaluations))
	for k, v := range c.evaluations {
		evaluations[k] = v
	}
	inFlight := make([]int, 0, len(c.inFlight))
	for k := range c.inFlight {
		inFlight = append(inFlight, k)
	}
	slices.Sort(inFlight)

	questions := slices.Clone(c.questions)
	if questions == nil {
		questions = []entity.Question{}
	}

	return entity.InterviewStateDTO{
		Questions:   questions,
		ActiveIndex: c.active,
		Answers:     answers,
		Evaluations: evaluations,
		InFlight:    inFlight,
	}
}
