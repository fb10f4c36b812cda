package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/vytor/vocabquiz/internal/catalog"
	"github.com/vytor/vocabquiz/internal/errors"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/models"
	"github.com/vytor/vocabquiz/internal/quiz"
)

// QuizService runs quiz sessions on behalf of a user.
type QuizService interface {
	Start(ctx context.Context, userID int64, req models.StartQuizRequest) (*models.QuizView, error)
	Current(ctx context.Context, userID int64) (*models.QuizView, error)
	Answer(ctx context.Context, userID int64, index int, answer string) (*models.QuizView, error)
	Next(ctx context.Context, userID int64) (*models.QuizView, error)
	// Finish closes a completed session and returns it for result saving.
	Finish(ctx context.Context, userID int64) (*models.CompletedQuiz, error)
	Reset(ctx context.Context, userID int64) error
	Words(ctx context.Context, difficulty models.Difficulty) ([]models.VocabItem, error)
}

// QuizOptions holds the question count limits.
type QuizOptions struct {
	DefaultCount int
	MaxCount     int
}

type quizService struct {
	catalog  catalog.Source
	sessions quiz.Store
	rand     quiz.Rand
	now      func() time.Time
	opts     QuizOptions
}

// NewQuizService creates a new QuizService. A nil rnd uses quiz.DefaultRand.
func NewQuizService(source catalog.Source, sessions quiz.Store, rnd quiz.Rand, opts QuizOptions) QuizService {
	if rnd == nil {
		rnd = quiz.DefaultRand
	}
	return &quizService{
		catalog:  source,
		sessions: sessions,
		rand:     rnd,
		now:      func() time.Time { return time.Now().UTC() },
		opts:     opts,
	}
}

func (s *quizService) machine(userID int64) *quiz.Machine {
	return quiz.NewMachine(s.sessions, models.SessionKey(userID)).WithClock(s.now)
}

func (s *quizService) Start(ctx context.Context, userID int64, req models.StartQuizRequest) (*models.QuizView, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)

	difficulty, err := parseDifficulty(req.Difficulty)
	if err != nil {
		return nil, err
	}
	count := req.Count
	if count == 0 {
		count = s.opts.DefaultCount
	}
	if count < 1 || (s.opts.MaxCount > 0 && count > s.opts.MaxCount) {
		return nil, errors.NewValidationError("count", "must be between 1 and the configured maximum")
	}
	log.Debug("starting quiz: count=%d difficulty=%s", count, difficulty)

	items, err := s.items(ctx)
	if err != nil {
		return nil, err
	}

	selected := quiz.SelectRandomWords(s.rand, items, count, difficulty)
	m := s.machine(userID)
	session, err := m.Initialize(ctx, selected, difficulty)
	if err != nil {
		log.Error("failed to start quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if err := s.ensureOptions(ctx, m, session, items); err != nil {
		return nil, err
	}

	log.Info("quiz %s started with %d questions", session.ID, session.TotalQuestions())
	return view(session), nil
}

func (s *quizService) Current(ctx context.Context, userID int64) (*models.QuizView, error) {
	m := s.machine(userID)
	session, err := s.load(ctx, m, false)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return view(nil), nil
	}
	if err := s.ensureCatalogOptions(ctx, m, session); err != nil {
		return nil, err
	}
	return view(session), nil
}

func (s *quizService) Answer(ctx context.Context, userID int64, index int, answer string) (*models.QuizView, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)
	m := s.machine(userID)
	session, err := s.load(ctx, m, true)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= session.TotalQuestions() {
		return nil, errors.NewValidationError("index", "out of range")
	}

	item := session.SelectedItems[index]
	correct := strings.TrimSpace(answer) == item.Meaning
	if err := m.RecordAnswer(ctx, session, index, answer, correct); err != nil {
		if stderrors.Is(err, quiz.ErrIndexOutOfRange) {
			return nil, errors.NewValidationError("index", "out of range")
		}
		log.Error("failed to record answer: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Debug("answer recorded: index=%d correct=%t score=%d", index, correct, session.Score)
	return view(session), nil
}

func (s *quizService) Next(ctx context.Context, userID int64) (*models.QuizView, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)
	m := s.machine(userID)
	session, err := s.load(ctx, m, true)
	if err != nil {
		return nil, err
	}

	if err := m.Advance(ctx, session); err != nil {
		log.Error("failed to advance quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if err := s.ensureCatalogOptions(ctx, m, session); err != nil {
		return nil, err
	}
	return view(session), nil
}

func (s *quizService) Finish(ctx context.Context, userID int64) (*models.CompletedQuiz, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)
	m := s.machine(userID)
	session, err := s.load(ctx, m, true)
	if err != nil {
		return nil, err
	}
	if !quiz.IsCompleted(*session) {
		return nil, errors.NewValidationError("quiz", "answer the last question before finishing")
	}

	end := s.now()
	completed := &models.CompletedQuiz{
		Session: *session,
		EndTime: end,
		Summary: quiz.Summarize(*session, end),
	}
	if err := m.Reset(ctx); err != nil {
		log.Error("failed to clear finished quiz: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("quiz %s finished: %d/%d", session.ID, session.Score, session.TotalQuestions())
	return completed, nil
}

func (s *quizService) Reset(ctx context.Context, userID int64) error {
	if err := s.machine(userID).Reset(ctx); err != nil {
		logger.FromContext(ctx).Error("failed to reset quiz: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *quizService) Words(ctx context.Context, difficulty models.Difficulty) ([]models.VocabItem, error) {
	d, err := parseDifficulty(difficulty)
	if err != nil {
		return nil, err
	}
	items, err := s.items(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(items, d), nil
}

func (s *quizService) items(ctx context.Context) ([]models.VocabItem, error) {
	items, err := s.catalog.Items(ctx)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewCatalogUnavailableError(err)
	}
	return items, nil
}

func (s *quizService) load(ctx context.Context, m *quiz.Machine, required bool) (*models.QuizSession, error) {
	session, err := m.Load(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load quiz session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if session != nil && session.TotalQuestions() == 0 {
		session = nil
	}
	if session == nil && required {
		return nil, errors.NewNotFoundError("quiz session", "none in progress")
	}
	return session, nil
}

// ensureCatalogOptions fills in options for the current question, loading the
// catalog only when they are missing.
func (s *quizService) ensureCatalogOptions(ctx context.Context, m *quiz.Machine, session *models.QuizSession) error {
	if _, ok := session.Options[session.CurrentIndex]; ok {
		return nil
	}
	items, err := s.items(ctx)
	if err != nil {
		return err
	}
	return s.ensureOptions(ctx, m, session, items)
}

func (s *quizService) ensureOptions(ctx context.Context, m *quiz.Machine, session *models.QuizSession, pool []models.VocabItem) error {
	idx := session.CurrentIndex
	if _, ok := session.Options[idx]; ok {
		return nil
	}
	options := quiz.CreateMultipleChoiceOptions(s.rand, session.SelectedItems[idx], pool)
	if err := m.SetOptions(ctx, session, idx, options); err != nil {
		logger.FromContext(ctx).Error("failed to store options: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func parseDifficulty(d models.Difficulty) (models.Difficulty, error) {
	d = models.Difficulty(strings.ToLower(strings.TrimSpace(string(d))))
	if d == "" {
		return models.DifficultyAll, nil
	}
	if !d.ValidFilter() {
		return "", errors.NewValidationError("difficulty", "must be one of easy, medium, hard, all")
	}
	return d, nil
}

func view(session *models.QuizSession) *models.QuizView {
	state := quiz.StateOf(session)
	if session == nil {
		return &models.QuizView{State: string(state)}
	}

	idx := session.CurrentIndex
	item := session.SelectedItems[idx]
	v := &models.QuizView{
		SessionID:  session.ID,
		State:      string(state),
		Difficulty: session.Difficulty,
		Index:      idx,
		Total:      session.TotalQuestions(),
		Score:      session.Score,
		StartTime:  session.StartTime,
		Question: &models.Question{
			Word:    item.Word,
			Example: item.Example,
			Options: session.Options[idx],
		},
	}
	if a, ok := session.Answers[idx]; ok {
		v.Answer = &models.AnswerView{
			SelectedAnswer: a.SelectedAnswer,
			Correct:        a.Correct,
			CorrectAnswer:  item.Meaning,
		}
	}
	return v
}
