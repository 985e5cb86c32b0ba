package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"

	"exam-service/internal/apperror"
	"exam-service/internal/assets"
	"exam-service/internal/event"
	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// questionWriteConcurrency bounds the per-question fan-out within a single
// create or update call.
const questionWriteConcurrency = 4

// ExamService owns the exam/question lifecycle: creation, update and
// cascading deletion, plus reconciliation of question images against the
// asset store. Multi-step operations compensate already-applied asset writes
// when a later step fails; compensation failures are logged and recorded but
// never replace the triggering error.
type ExamService struct {
	exams       ExamStore
	questions   QuestionStore
	categories  CategoryStore
	assets      assets.Store
	events      *event.Publisher
	defaultTier models.Tier
}

func NewExamService(exams ExamStore, questions QuestionStore, categories CategoryStore, store assets.Store, events *event.Publisher, defaultTier models.Tier) *ExamService {
	return &ExamService{
		exams:       exams,
		questions:   questions,
		categories:  categories,
		assets:      store,
		events:      events,
		defaultTier: defaultTier,
	}
}

// QuestionSpec describes one question submitted with a create call.
type QuestionSpec struct {
	Answers        []string
	CorrectAnswers []int
	Points         float64
	Explanation    string
	Image          *assets.Upload
}

type CreateExamInput struct {
	Title      string
	CategoryID primitive.ObjectID
	UserID     primitive.ObjectID
	Duration   int
	Tier       models.Tier
	Questions  []QuestionSpec
}

// QuestionUpsert describes one question submitted with an update call. A nil
// ID means create. Image semantics follow the upload convention: a non-nil
// Image keeps that already-stored name, a nil Image clears it and NewImage,
// when attached, becomes the replacement.
type QuestionUpsert struct {
	ID             *primitive.ObjectID
	Answers        []string
	CorrectAnswers []int
	Points         float64
	Explanation    string
	Image          *string
	NewImage       *assets.Upload
}

type UpdateExamInput struct {
	Title      *string
	CategoryID *primitive.ObjectID
	Duration   *int
	Tier       *models.Tier
	IsVisible  *bool
	Upserts    []QuestionUpsert
	DeleteIDs  []primitive.ObjectID
}

// ListExams returns the exams the principal may see: privileged principals
// see everything, everyone else only visible exams their tier dominates.
func (s *ExamService) ListExams(ctx context.Context, principal *models.Principal) ([]models.Exam, error) {
	exams, err := s.exams.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if principal.Privileged() {
		return exams, nil
	}
	visible := make([]models.Exam, 0, len(exams))
	for _, e := range exams {
		if e.IsVisible && principal.Tier.Dominates(e.Tier) {
			visible = append(visible, e)
		}
	}
	return visible, nil
}

// GetExam resolves an exam by id or slug with its questions in presentation
// order.
func (s *ExamService) GetExam(ctx context.Context, identifier string) (*models.ExamWithQuestions, error) {
	exam, err := s.exams.FindByIDOrSlug(ctx, identifier)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.FindByIDs(ctx, exam.QuestionIDs)
	if err != nil {
		return nil, err
	}
	return &models.ExamWithQuestions{Exam: *exam, Questions: questions}, nil
}

// ListExamsByCategory returns the exams of a category addressed by its exact
// title.
func (s *ExamService) ListExamsByCategory(ctx context.Context, title string) ([]models.Exam, error) {
	category, err := s.categories.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	return s.exams.FindByCategory(ctx, category.ID)
}

// CreateExam persists an exam and its questions in one logical operation.
// Question images and documents are written with bounded fan-out and joined
// before the exam document is written, so the exam only ever references
// durable questions. On any per-question failure every image and question
// written by this call is compensated: either everything exists afterwards
// or nothing does.
func (s *ExamService) CreateExam(ctx context.Context, in CreateExamInput) (*models.Exam, error) {
	if err := models.ValidateTitle(in.Title); err != nil {
		return nil, apperror.Validationf("%v", err)
	}
	if in.Duration <= 0 {
		return nil, apperror.Validationf("duration must be positive")
	}
	if len(in.Questions) == 0 {
		return nil, apperror.Validationf("an exam needs at least one question")
	}
	tier := in.Tier
	if tier == "" {
		tier = s.defaultTier
	}
	if !tier.Valid() {
		return nil, apperror.Validationf("unknown tier %q", tier)
	}
	if _, err := s.categories.FindByID(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	// Writes issued from here on run to completion even if the caller goes
	// away; an abandoned request must not leave half-issued writes behind.
	ctx = context.WithoutCancel(ctx)

	ids := make([]primitive.ObjectID, len(in.Questions))
	var mu sync.Mutex
	var uploaded []string
	var created []primitive.ObjectID

	var g errgroup.Group
	g.SetLimit(questionWriteConcurrency)
	for i, spec := range in.Questions {
		i, spec := i, spec
		g.Go(func() error {
			q := &models.Question{
				Answers:        spec.Answers,
				CorrectAnswers: spec.CorrectAnswers,
				Points:         spec.Points,
				Explanation:    spec.Explanation,
			}
			if err := q.Validate(); err != nil {
				return apperror.Validationf("question at index %d: %v", i, err)
			}
			if spec.Image != nil {
				name := assets.NewObjectName(spec.Image.Filename)
				err := s.assets.Save(ctx, name, bytes.NewReader(spec.Image.Content),
					int64(len(spec.Image.Content)), spec.Image.ContentType)
				if err != nil {
					return apperror.Dependency(err, "failed to store image for question at index %d", i)
				}
				mu.Lock()
				uploaded = append(uploaded, name)
				mu.Unlock()
				q.Image = name
			}
			if err := s.questions.Insert(ctx, q); err != nil {
				return apperror.Dependency(err, "failed to save question at index %d", i)
			}
			mu.Lock()
			created = append(created, q.ID)
			mu.Unlock()
			ids[i] = q.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.compensateCreate(ctx, uploaded, created, err)
		return nil, err
	}

	exam := &models.Exam{
		Title:       in.Title,
		Slug:        models.Slugify(in.Title),
		QuestionIDs: ids,
		CategoryID:  in.CategoryID,
		UserID:      in.UserID,
		Duration:    in.Duration,
		Tier:        tier,
	}
	if err := s.exams.Insert(ctx, exam); err != nil {
		s.compensateCreate(ctx, uploaded, created, err)
		return nil, err
	}

	s.events.Submit("exam.created", map[string]any{"id": exam.ID.Hex(), "title": exam.Title})
	return exam, nil
}

// compensateCreate reverses the side effects of a failed create: every image
// and question document written by the call. Each compensating delete is
// attempted independently; its own failure is logged and recorded on the
// original error, never surfaced in its place.
func (s *ExamService) compensateCreate(ctx context.Context, uploaded []string, created []primitive.ObjectID, cause error) {
	var failed []string
	for _, name := range uploaded {
		if err := s.assets.Remove(ctx, name); err != nil {
			failed = append(failed, name)
			log.Printf("[ROLLBACK] failed to delete image %s: %v", name, err)
		}
	}
	if err := s.questions.DeleteMany(ctx, created); err != nil {
		log.Printf("[ROLLBACK] failed to delete %d questions: %v", len(created), err)
	}
	if len(failed) > 0 {
		var ae *apperror.Error
		if errors.As(cause, &ae) {
			ae.RollbackFailures = failed
		}
	}
}

// UpdateExam applies field changes, question upserts and question deletions
// to an exam. Image replacement is write-then-delete: the old asset is
// removed only after the question document points at the new one. On an
// upsert failure only the images uploaded during this call are compensated;
// documents already updated stay as they are.
func (s *ExamService) UpdateExam(ctx context.Context, examID string, in UpdateExamInput) (*models.Exam, error) {
	oid, err := primitive.ObjectIDFromHex(examID)
	if err != nil {
		return nil, apperror.Validationf("invalid exam id %q", examID)
	}
	exam, err := s.exams.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	upd := models.ExamUpdate{
		CategoryID: in.CategoryID,
		Duration:   in.Duration,
		Tier:       in.Tier,
		IsVisible:  in.IsVisible,
	}
	if in.Title != nil {
		if err := models.ValidateTitle(*in.Title); err != nil {
			return nil, apperror.Validationf("%v", err)
		}
		slug := models.Slugify(*in.Title)
		upd.Title = in.Title
		upd.Slug = &slug
	}
	if in.Duration != nil && *in.Duration <= 0 {
		return nil, apperror.Validationf("duration must be positive")
	}
	if in.Tier != nil && !in.Tier.Valid() {
		return nil, apperror.Validationf("unknown tier %q", *in.Tier)
	}
	if in.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	if hasDuplicateIDs(upsertQuestionIDs(in.Upserts)) {
		return nil, apperror.Validationf("exam references the same question twice")
	}

	ctx = context.WithoutCancel(ctx)

	questionIDs := exam.QuestionIDs
	var mu sync.Mutex
	var uploaded []string

	if len(in.Upserts) > 0 {
		ids := make([]primitive.ObjectID, len(in.Upserts))

		var g errgroup.Group
		g.SetLimit(questionWriteConcurrency)
		for i, up := range in.Upserts {
			i, up := i, up
			g.Go(func() error {
				id, names, err := s.applyUpsert(ctx, i, up)
				if len(names) > 0 {
					mu.Lock()
					uploaded = append(uploaded, names...)
					mu.Unlock()
				}
				if err != nil {
					return err
				}
				ids[i] = id
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			s.compensateUploads(ctx, uploaded, err)
			return nil, err
		}
		questionIDs = ids
	}

	for _, id := range in.DeleteIDs {
		if err := s.deleteQuestion(ctx, id); err != nil {
			s.compensateUploads(ctx, uploaded, err)
			return nil, err
		}
	}

	// The exam's reference list is recomputed from the surviving set.
	questionIDs = withoutIDs(questionIDs, in.DeleteIDs)
	if hasDuplicateIDs(questionIDs) {
		err := apperror.Validationf("exam references the same question twice")
		s.compensateUploads(ctx, uploaded, err)
		return nil, err
	}
	upd.QuestionIDs = &questionIDs

	updated, err := s.exams.Update(ctx, oid, upd)
	if err != nil {
		s.compensateUploads(ctx, uploaded, err)
		return nil, err
	}

	s.events.Submit("exam.updated", map[string]any{"id": updated.ID.Hex(), "title": updated.Title})
	return updated, nil
}

// applyUpsert processes one question upsert. It returns the question id, the
// object names uploaded for this upsert (for compensation by the caller) and
// the first error.
func (s *ExamService) applyUpsert(ctx context.Context, index int, up QuestionUpsert) (primitive.ObjectID, []string, error) {
	q := &models.Question{
		Answers:        up.Answers,
		CorrectAnswers: up.CorrectAnswers,
		Points:         up.Points,
		Explanation:    up.Explanation,
	}
	if err := q.Validate(); err != nil {
		return primitive.NilObjectID, nil, apperror.Validationf("question at index %d: %v", index, err)
	}

	if up.ID == nil {
		// Creation path: a fresh question may only carry freshly uploaded
		// bytes, never a pre-existing image reference.
		if up.Image != nil && *up.Image != "" {
			return primitive.NilObjectID, nil, apperror.Validationf("question at index %d references an unknown image", index)
		}
		var uploaded []string
		if up.NewImage != nil {
			name, err := s.saveUpload(ctx, index, up.NewImage)
			if err != nil {
				return primitive.NilObjectID, nil, err
			}
			uploaded = append(uploaded, name)
			q.Image = name
		}
		if err := s.questions.Insert(ctx, q); err != nil {
			return primitive.NilObjectID, uploaded, apperror.Dependency(err, "failed to save question at index %d", index)
		}
		return q.ID, uploaded, nil
	}

	existing, err := s.questions.FindByID(ctx, *up.ID)
	if err != nil {
		return primitive.NilObjectID, nil, err
	}

	var uploaded []string
	switch {
	case up.Image != nil:
		// Keeping a stored image: the reference must be a name this service
		// generated, and only the question's own current asset is legal.
		if *up.Image != "" && (!assets.ValidObjectName(*up.Image) || *up.Image != existing.Image) {
			return primitive.NilObjectID, nil, apperror.Validationf("question at index %d references an unknown image", index)
		}
		q.Image = *up.Image
	case up.NewImage != nil:
		name, err := s.saveUpload(ctx, index, up.NewImage)
		if err != nil {
			return primitive.NilObjectID, nil, err
		}
		uploaded = append(uploaded, name)
		q.Image = name
	default:
		// Explicit clear with no replacement.
		q.Image = ""
	}

	if err := s.questions.Update(ctx, *up.ID, q); err != nil {
		return primitive.NilObjectID, uploaded, apperror.Dependency(err, "failed to update question at index %d", index)
	}

	// The document now points at the new asset; only then is the old one
	// removed, so there is no window where it references a deleted file.
	if existing.Image != "" && existing.Image != q.Image {
		if err := s.assets.Remove(ctx, existing.Image); err != nil {
			log.Printf("Failed to delete replaced image %s for question %s: %v", existing.Image, up.ID.Hex(), err)
		}
	}
	return *up.ID, uploaded, nil
}

func (s *ExamService) saveUpload(ctx context.Context, index int, upload *assets.Upload) (string, error) {
	name := assets.NewObjectName(upload.Filename)
	err := s.assets.Save(ctx, name, bytes.NewReader(upload.Content), int64(len(upload.Content)), upload.ContentType)
	if err != nil {
		return "", apperror.Dependency(err, "failed to store image for question at index %d", index)
	}
	return name, nil
}

// deleteQuestion removes a question and its image. A missing document is
// tolerated; a missing or undeletable image is logged and never blocks the
// document deletion.
func (s *ExamService) deleteQuestion(ctx context.Context, id primitive.ObjectID) error {
	q, err := s.questions.FindByID(ctx, id)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil
		}
		return err
	}
	if q.Image != "" {
		if err := s.assets.Remove(ctx, q.Image); err != nil {
			log.Printf("Failed to delete image %s for question %s: %v", q.Image, id.Hex(), err)
		}
	}
	return s.questions.Delete(ctx, id)
}

func (s *ExamService) compensateUploads(ctx context.Context, uploaded []string, cause error) {
	var failed []string
	for _, name := range uploaded {
		if err := s.assets.Remove(ctx, name); err != nil {
			failed = append(failed, name)
			log.Printf("[ROLLBACK] failed to delete image %s: %v", name, err)
		}
	}
	if len(failed) > 0 {
		var ae *apperror.Error
		if errors.As(cause, &ae) {
			ae.RollbackFailures = failed
		}
	}
}

// DeleteExam tears down an exam, its questions and their images. Image
// deletes are best effort: keeping documents consistent outranks orphaned
// files during teardown, so document deletion always proceeds.
func (s *ExamService) DeleteExam(ctx context.Context, examID string) error {
	oid, err := primitive.ObjectIDFromHex(examID)
	if err != nil {
		return apperror.Validationf("invalid exam id %q", examID)
	}
	exam, err := s.exams.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if err := s.teardown(context.WithoutCancel(ctx), exam); err != nil {
		return err
	}
	s.events.Submit("exam.deleted", map[string]any{"id": examID})
	return nil
}

// teardown is the shared exam removal procedure, also driven by the category
// cascade.
func (s *ExamService) teardown(ctx context.Context, exam *models.Exam) error {
	questions, err := s.questions.FindByIDs(ctx, exam.QuestionIDs)
	if err != nil {
		return err
	}
	for _, q := range questions {
		if q.Image == "" {
			continue
		}
		if err := s.assets.Remove(ctx, q.Image); err != nil {
			log.Printf("Failed to delete image %s for question %s: %v", q.Image, q.ID.Hex(), err)
		}
	}
	if err := s.questions.DeleteMany(ctx, exam.QuestionIDs); err != nil {
		return err
	}
	return s.exams.Delete(ctx, exam.ID)
}

func upsertQuestionIDs(upserts []QuestionUpsert) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(upserts))
	for _, up := range upserts {
		if up.ID != nil {
			ids = append(ids, *up.ID)
		}
	}
	return ids
}

func withoutIDs(ids, drop []primitive.ObjectID) []primitive.ObjectID {
	if len(drop) == 0 {
		return ids
	}
	dropped := make(map[primitive.ObjectID]bool, len(drop))
	for _, id := range drop {
		dropped[id] = true
	}
	kept := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !dropped[id] {
			kept = append(kept, id)
		}
	}
	return kept
}

func hasDuplicateIDs(ids []primitive.ObjectID) bool {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}
