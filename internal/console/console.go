package console

import (
	"context"
	"sync"
	"time"

	"github.com/futig/career-console/internal/dictation"
	"github.com/futig/career-console/internal/entity"
	"github.com/futig/career-console/internal/pkg/logger"
	"github.com/futig/career-console/internal/task"
	"github.com/futig/career-console/internal/usecase/companies"
	"github.com/futig/career-console/internal/usecase/interview"
	"github.com/futig/career-console/internal/usecase/mentor"
	"github.com/futig/career-console/internal/usecase/session"
	"go.uber.org/zap"
)

// Feature names of the task runners
const (
	FeatureTailor    = "tailor"
	FeatureQuestions = "questions"
	FeatureProjects  = "projects"
	FeatureSchedule  = "schedule"
	FeatureJobs      = "jobs"
)

type Deps struct {
	Gateway      Gateway
	Validator    Validator
	History      HistoryRepository
	Notifier     Notifier
	Logger       *zap.Logger
	TaskTimeout  time.Duration
	MaxQuestions int
}

// Console is the explicitly owned context of one user: a single session
// and everything gated on it.
type Console struct {
	ID          string
	CallbackURL string

	deps   Deps
	logger *zap.Logger

	Session   *session.Store
	Dictation *dictation.Engine
	Interview *interview.Coordinator
	Mentor    *mentor.Mentor

	Tailor    *task.Task[string, *entity.TailorResult]
	Questions *task.Task[int, []entity.Question]
	Projects  *task.Task[struct{}, []entity.Project]
	Schedule  *task.Task[struct{}, *entity.SchedulePlan]
	Jobs      *task.Task[entity.JobsTaskRequest, *entity.JobSearch]

	mu        sync.Mutex
	updatedAt time.Time
}

func New(id string, callbackURL string, deps Deps) *Console {
	log := deps.Logger.With(zap.String("console_id", id))

	c := &Console{
		ID:          id,
		CallbackURL: callbackURL,
		deps:        deps,
		logger:      log,
		updatedAt:   time.Now().UTC(),
	}

	c.Session = session.NewStore(deps.Gateway, deps.Validator, log)
	c.Dictation = dictation.NewEngine(nil, log)
	c.Interview = interview.NewCoordinator(deps.Gateway, c.Session, c.Dictation, deps.History, deps.MaxQuestions)
	c.Mentor = mentor.New(deps.Gateway, c.Session)

	c.Tailor = task.New(FeatureTailor, c.Session,
		func(ctx context.Context, sid string, jd string) (*entity.TailorResult, error) {
			return deps.Gateway.Tailor(ctx, &entity.TailorRequest{SessionID: sid, JobDescription: jd})
		},
		task.WithValidator[string, *entity.TailorResult](func(jd *string) error {
			return deps.Validator.ValidateJobDescription(*jd)
		}),
		task.WithTimeout[string, *entity.TailorResult](deps.TaskTimeout),
		task.WithOnFinish[string, *entity.TailorResult](notifyTask[*entity.TailorResult](c, FeatureTailor)),
	)

	c.Questions = task.New(FeatureQuestions, c.Session,
		func(ctx context.Context, _ string, n int) ([]entity.Question, error) {
			return c.Interview.GenerateBatch(ctx, n)
		},
		task.WithTimeout[int, []entity.Question](deps.TaskTimeout),
		task.WithOnFinish[int, []entity.Question](notifyTask[[]entity.Question](c, FeatureQuestions)),
	)

	c.Projects = task.New(FeatureProjects, c.Session,
		func(ctx context.Context, sid string, _ struct{}) ([]entity.Project, error) {
			resp, err := deps.Gateway.GenerateProjects(ctx, &entity.SessionRequest{SessionID: sid})
			if err != nil {
				return nil, err
			}
			return resp.Projects, nil
		},
		task.WithTimeout[struct{}, []entity.Project](deps.TaskTimeout),
		task.WithOnFinish[struct{}, []entity.Project](notifyTask[[]entity.Project](c, FeatureProjects)),
	)

	c.Schedule = task.New(FeatureSchedule, c.Session,
		func(ctx context.Context, sid string, _ struct{}) (*entity.SchedulePlan, error) {
			return deps.Gateway.GenerateSchedule(ctx, &entity.SessionRequest{SessionID: sid})
		},
		task.WithTimeout[struct{}, *entity.SchedulePlan](deps.TaskTimeout),
		task.WithOnFinish[struct{}, *entity.SchedulePlan](notifyTask[*entity.SchedulePlan](c, FeatureSchedule)),
	)

	c.Jobs = task.New(FeatureJobs, c.Session,
		func(ctx context.Context, sid string, in entity.JobsTaskRequest) (*entity.JobSearch, error) {
			return deps.Gateway.FindJobs(ctx, &entity.FindJobsRequest{
				SessionID:  sid,
				Location:   in.Location,
				NumResults: in.NumResults,
			})
		},
		task.WithValidator[entity.JobsTaskRequest, *entity.JobSearch](deps.Validator.NormalizeJobSearch),
		task.WithTimeout[entity.JobsTaskRequest, *entity.JobSearch](deps.TaskTimeout),
		task.WithOnFinish[entity.JobsTaskRequest, *entity.JobSearch](notifyTask[*entity.JobSearch](c, FeatureJobs)),
	)

	c.Interview.OnEvaluated(func(ctx context.Context, index int, ev *entity.Evaluation) {
		c.touch()
		if c.CallbackURL != "" && deps.Notifier != nil {
			deps.Notifier.SendEvaluation(ctx, c.CallbackURL, c.ID, &entity.CallbackEvaluationData{
				QuestionIndex: index,
				Evaluation:    ev,
			})
		}
	})

	c.Session.OnReset(c.Dictation.Reset)
	c.Session.OnReset(c.Interview.Reset)
	c.Session.OnReset(c.Mentor.Reset)
	c.Session.OnReset(c.Tailor.Reset)
	c.Session.OnReset(c.Questions.Reset)
	c.Session.OnReset(c.Projects.Reset)
	c.Session.OnReset(c.Schedule.Reset)
	c.Session.OnReset(c.Jobs.Reset)

	return c
}

func notifyTask[Out any](c *Console, feature string) func(ctx context.Context, snap task.Snapshot[Out]) {
	return func(ctx context.Context, snap task.Snapshot[Out]) {
		c.touch()
		if c.CallbackURL == "" || c.deps.Notifier == nil {
			return
		}

		data := &entity.CallbackTaskData{
			Feature: feature,
			Status:  string(snap.Status),
			Error:   snap.Error,
		}
		if snap.Status == task.StatusDone {
			data.Result = snap.Result
		}
		c.deps.Notifier.SendTaskFinished(ctx, c.CallbackURL, c.ID, data)
	}
}

// Context returns ctx carrying this console's logger and its session id
func (c *Console) Context(ctx context.Context) context.Context {
	ctx = logger.WithConsole(ctx, c.ID)
	if s := c.Session.Current(); s != nil {
		ctx = logger.WithSession(ctx, s.ID)
	}
	return ctx
}

// CreateSession runs upload and analysis, then greets the user in the mentor chat
func (c *Console) CreateSession(ctx context.Context, resume session.Resume, prefs entity.Preferences) (*entity.Session, error) {
	ctx = logger.WithAction(c.Context(ctx), "create_session")

	s, err := c.Session.CreateSession(ctx, resume, prefs)
	if err != nil {
		return nil, err
	}

	c.Mentor.Seed(mentor.Greeting(s))
	c.touch()

	if c.CallbackURL != "" && c.deps.Notifier != nil {
		c.deps.Notifier.SendSessionCreated(ctx, c.CallbackURL, c.ID, s)
	}

	return s, nil
}

// Reset discards the session and all dependent state
func (c *Console) Reset(ctx context.Context) {
	ctx = logger.WithAction(c.Context(ctx), "reset_session")

	c.Session.Reset(ctx)
	c.touch()

	if c.CallbackURL != "" && c.deps.Notifier != nil {
		c.deps.Notifier.SendSessionReset(ctx, c.CallbackURL, c.ID)
	}
}

// Close releases the console: the capture stream and the remote session
func (c *Console) Close(ctx context.Context) {
	c.Session.Reset(c.Context(ctx))
	c.Dictation.SetCapture(nil)
}

// Companies lists employers for the session's target role
func (c *Console) Companies() ([]entity.Company, error) {
	s := c.Session.Current()
	if s == nil {
		return nil, entity.ErrBlocked
	}

	var score int
	if s.Analysis != nil {
		score = s.Analysis.MatchScore
	}
	return companies.ForRole(s.Preferences.TargetRole, score), nil
}

// Report builds the interview report of the current batch
func (c *Console) Report() (*entity.InterviewReport, error) {
	s := c.Session.Current()
	if s == nil {
		return nil, entity.ErrBlocked
	}

	snap := c.Interview.Snapshot()
	report := &entity.InterviewReport{
		TargetRole:  s.Preferences.TargetRole,
		GeneratedAt: time.Now().UTC(),
		Items:       make([]entity.ReportItem, 0, len(snap.Questions)),
	}
	if s.Analysis != nil {
		report.MatchScore = s.Analysis.MatchScore
	}

	for _, q := range snap.Questions {
		item := entity.ReportItem{Question: q, Evaluation: snap.Evaluations[q.Index]}
		if ans, ok := snap.Answers[q.Index]; ok {
			item.Answer = &ans
		}
		report.Items = append(report.Items, item)
	}

	return report, nil
}

// History lists recorded evaluation attempts of the current session
func (c *Console) History(ctx context.Context) ([]*entity.EvaluationAttempt, error) {
	s := c.Session.Current()
	if s == nil {
		return nil, entity.ErrBlocked
	}
	if c.deps.History == nil {
		return []*entity.EvaluationAttempt{}, nil
	}
	return c.deps.History.ListAttempts(ctx, s.ID)
}

func (c *Console) touch() {
	c.mu.Lock()
	c.updatedAt = time.Now().UTC()
	c.mu.Unlock()
}

// State is a full snapshot of the console
func (c *Console) State() *entity.ConsoleStateDTO {
	c.mu.Lock()
	updatedAt := c.updatedAt
	c.mu.Unlock()

	return &entity.ConsoleStateDTO{
		ID:        c.ID,
		Session:   c.Session.Current(),
		Dictation: c.Dictation.State().DTO(),
		Interview: c.Interview.Snapshot(),
		Mentor:    c.Mentor.Snapshot(),
		Tasks: map[string]entity.TaskStateDTO{
			FeatureTailor:    taskDTO(c.Tailor.Snapshot()),
			FeatureQuestions: taskDTO(c.Questions.Snapshot()),
			FeatureProjects:  taskDTO(c.Projects.Snapshot()),
			FeatureSchedule:  taskDTO(c.Schedule.Snapshot()),
			FeatureJobs:      taskDTO(c.Jobs.Snapshot()),
		},
		UpdatedAt: updatedAt,
	}
}

func taskDTO[Out any](snap task.Snapshot[Out]) entity.TaskStateDTO {
	dto := entity.TaskStateDTO{
		Status: string(snap.Status),
		Error:  snap.Error,
		Loaded: snap.Loaded,
	}
	if snap.Status == task.StatusDone {
		dto.Result = snap.Result
	}
	return dto
}
