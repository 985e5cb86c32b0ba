package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"exam-service/internal/apperror"
	"exam-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// oplog records store operations across fakes so tests can assert ordering
// between asset and document writes.
type oplog struct {
	mu      sync.Mutex
	entries []string
}

func (l *oplog) add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *oplog) index(entry string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e == entry {
			return i
		}
	}
	return -1
}

type fakeAssets struct {
	mu          sync.Mutex
	objects     map[string][]byte
	failRemove  map[string]bool
	removeDelay time.Duration
	log         *oplog
}

func newFakeAssets(log *oplog) *fakeAssets {
	return &fakeAssets{
		objects:    make(map[string][]byte),
		failRemove: make(map[string]bool),
		log:        log,
	}
}

func (f *fakeAssets) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.objects[name] = content
	f.mu.Unlock()
	f.log.add("save:" + name)
	return nil
}

func (f *fakeAssets) Remove(ctx context.Context, name string) error {
	if f.removeDelay > 0 {
		time.Sleep(f.removeDelay)
	}
	f.mu.Lock()
	fail := f.failRemove[name]
	if !fail {
		delete(f.objects, name)
	}
	f.mu.Unlock()
	if fail {
		f.log.add("remove-fail:" + name)
		return errors.New("remove failed")
	}
	f.log.add("remove:" + name)
	return nil
}

func (f *fakeAssets) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func (f *fakeAssets) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[name]
	return ok
}

func (f *fakeAssets) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for name := range f.objects {
		names = append(names, name)
	}
	return names
}

type fakeQuestions struct {
	mu sync.Mutex
	// failInsertExplanation makes Insert fail for questions carrying this
	// explanation, giving tests a deterministic failure point.
	failInsertExplanation string
	failUpdate            bool
	docs                  map[primitive.ObjectID]models.Question
	log                   *oplog
}

func newFakeQuestions(log *oplog) *fakeQuestions {
	return &fakeQuestions{docs: make(map[primitive.ObjectID]models.Question), log: log}
}

func (f *fakeQuestions) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.docs[id]
	if !ok {
		return nil, apperror.NotFound("question")
	}
	return &q, nil
}

func (f *fakeQuestions) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Question
	for _, id := range ids {
		if q, ok := f.docs[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestions) Insert(ctx context.Context, q *models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsertExplanation != "" && q.Explanation == f.failInsertExplanation {
		return errors.New("insert failed")
	}
	q.ID = primitive.NewObjectID()
	f.docs[q.ID] = *q
	f.log.add("insert-question:" + q.ID.Hex())
	return nil
}

func (f *fakeQuestions) Update(ctx context.Context, id primitive.ObjectID, q *models.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return errors.New("update failed")
	}
	stored, ok := f.docs[id]
	if !ok {
		return apperror.NotFound("question")
	}
	stored.Answers = q.Answers
	stored.CorrectAnswers = q.CorrectAnswers
	stored.Points = q.Points
	stored.Explanation = q.Explanation
	stored.Image = q.Image
	f.docs[id] = stored
	f.log.add("update-question:" + id.Hex())
	return nil
}

func (f *fakeQuestions) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return apperror.NotFound("question")
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeQuestions) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.docs, id)
	}
	return nil
}

func (f *fakeQuestions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

type fakeExams struct {
	mu         sync.Mutex
	failInsert bool
	// failDeleteSlug makes Delete fail for the exam carrying this slug.
	failDeleteSlug string
	docs           map[primitive.ObjectID]models.Exam
}

func newFakeExams() *fakeExams {
	return &fakeExams{docs: make(map[primitive.ObjectID]models.Exam)}
}

func (f *fakeExams) FindAll(ctx context.Context) ([]models.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Exam
	for _, e := range f.docs {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeExams) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.docs[id]
	if !ok {
		return nil, apperror.NotFound("exam")
	}
	return &e, nil
}

func (f *fakeExams) FindByIDOrSlug(ctx context.Context, identifier string) (*models.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.docs {
		if e.ID.Hex() == identifier || e.Slug == identifier {
			return &e, nil
		}
	}
	return nil, apperror.NotFound("exam")
}

func (f *fakeExams) FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Exam
	for _, e := range f.docs {
		if e.CategoryID == categoryID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExams) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	exams, _ := f.FindByCategory(ctx, categoryID)
	return int64(len(exams)), nil
}

func (f *fakeExams) Insert(ctx context.Context, e *models.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return errors.New("insert failed")
	}
	for _, existing := range f.docs {
		if existing.Slug == e.Slug {
			return apperror.Conflict("an exam with this title already exists")
		}
	}
	e.ID = primitive.NewObjectID()
	f.docs[e.ID] = *e
	return nil
}

func (f *fakeExams) Update(ctx context.Context, id primitive.ObjectID, upd models.ExamUpdate) (*models.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.docs[id]
	if !ok {
		return nil, apperror.NotFound("exam")
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Slug != nil {
		e.Slug = *upd.Slug
	}
	if upd.CategoryID != nil {
		e.CategoryID = *upd.CategoryID
	}
	if upd.Duration != nil {
		e.Duration = *upd.Duration
	}
	if upd.Tier != nil {
		e.Tier = *upd.Tier
	}
	if upd.IsVisible != nil {
		e.IsVisible = *upd.IsVisible
	}
	if upd.QuestionIDs != nil {
		e.QuestionIDs = *upd.QuestionIDs
	}
	f.docs[id] = e
	return &e, nil
}

func (f *fakeExams) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.docs[id]
	if !ok {
		return apperror.NotFound("exam")
	}
	if f.failDeleteSlug != "" && e.Slug == f.failDeleteSlug {
		return errors.New("delete failed")
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeExams) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

type fakeCategories struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.Category
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{docs: make(map[primitive.ObjectID]models.Category)}
}

func (f *fakeCategories) add(title string, tier models.Tier) models.Category {
	c := models.Category{
		ID:    primitive.NewObjectID(),
		Title: title,
		Slug:  models.Slugify(title),
		Tier:  tier,
	}
	f.mu.Lock()
	f.docs[c.ID] = c
	f.mu.Unlock()
	return c
}

func (f *fakeCategories) FindAll(ctx context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Category
	for _, c := range f.docs {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategories) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.docs[id]
	if !ok {
		return nil, apperror.NotFound("category")
	}
	return &c, nil
}

func (f *fakeCategories) FindByIDOrSlug(ctx context.Context, identifier string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.docs {
		if c.ID.Hex() == identifier || c.Slug == identifier {
			return &c, nil
		}
	}
	return nil, apperror.NotFound("category")
}

func (f *fakeCategories) FindByTitle(ctx context.Context, title string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.docs {
		if c.Title == title {
			return &c, nil
		}
	}
	return nil, apperror.NotFound("category")
}

func (f *fakeCategories) Insert(ctx context.Context, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.docs {
		if existing.Slug == c.Slug || existing.Title == c.Title {
			return apperror.Conflict("a category with this title already exists")
		}
	}
	c.ID = primitive.NewObjectID()
	f.docs[c.ID] = *c
	return nil
}

func (f *fakeCategories) Update(ctx context.Context, id primitive.ObjectID, upd models.CategoryUpdate) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.docs[id]
	if !ok {
		return nil, apperror.NotFound("category")
	}
	if upd.Title != nil {
		c.Title = *upd.Title
	}
	if upd.Slug != nil {
		c.Slug = *upd.Slug
	}
	if upd.Tier != nil {
		c.Tier = *upd.Tier
	}
	if upd.IsVisible != nil {
		c.IsVisible = *upd.IsVisible
	}
	f.docs[id] = c
	return &c, nil
}

func (f *fakeCategories) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return apperror.NotFound("category")
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeCategories) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

type fakePrincipals struct {
	users map[string]*models.Principal
}

func newFakePrincipals(principals ...*models.Principal) *fakePrincipals {
	f := &fakePrincipals{users: make(map[string]*models.Principal)}
	for _, p := range principals {
		f.users[p.ID.Hex()] = p
	}
	return f
}

func (f *fakePrincipals) FindPrincipal(ctx context.Context, id string) (*models.Principal, error) {
	p, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	return p, nil
}

func newPrincipal(tier models.Tier, role string) *models.Principal {
	return &models.Principal{
		ID:       primitive.NewObjectID(),
		Username: fmt.Sprintf("%s-%s", role, tier),
		Tier:     tier,
		Role:     role,
	}
}
