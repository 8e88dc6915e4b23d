package service

import (
	"os"
	"papershare_backend/internal/model"
	"papershare_backend/pkg/logger"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type slotKey struct {
	departmentID, courseID, semesterID, examTypeID uint
	section                                        string
}

// fakeQuestionStore 内存实现，按需注入故障
type fakeQuestionStore struct {
	questions     map[slotKey]*model.Question
	publishedAxes map[string]map[uint]bool
	nextID        uint
	createErr     error
	skipLookups   int // 前N次查找强制miss，模拟并发窗口
	oldestByKey   map[slotKey]*model.Question
	createdCount  int
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{
		questions:     make(map[slotKey]*model.Question),
		publishedAxes: make(map[string]map[uint]bool),
		oldestByKey:   make(map[slotKey]*model.Question),
		nextID:        1,
	}
}

func (f *fakeQuestionStore) markPublished(column string, id uint) {
	if f.publishedAxes[column] == nil {
		f.publishedAxes[column] = make(map[uint]bool)
	}
	f.publishedAxes[column][id] = true
}

func (f *fakeQuestionStore) FindByClassification(departmentID, courseID, semesterID, examTypeID uint, section string) (*model.Question, error) {
	if f.skipLookups > 0 {
		f.skipLookups--
		return nil, gorm.ErrRecordNotFound
	}
	q, ok := f.questions[slotKey{departmentID, courseID, semesterID, examTypeID, section}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (f *fakeQuestionStore) Create(question *model.Question) error {
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return err
	}
	question.ID = f.nextID
	f.nextID++
	f.createdCount++
	key := slotKey{question.DepartmentID, question.CourseID, question.SemesterID, question.ExamTypeID, question.Section}
	f.questions[key] = question
	return nil
}

func (f *fakeQuestionStore) CountPublishedByAxis(column string, id uint) (int64, error) {
	if f.publishedAxes[column][id] {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeQuestionStore) FindOldestPublished(departmentID, courseID, semesterID, examTypeID uint, section string, excludeID uint) (*model.Question, error) {
	q, ok := f.oldestByKey[slotKey{departmentID, courseID, semesterID, examTypeID, section}]
	if !ok || q.ID == excludeID {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func seedAllAxes(f *fakeQuestionStore) {
	f.markPublished("department_id", 1)
	f.markPublished("course_id", 2)
	f.markPublished("semester_id", 3)
	f.markPublished("exam_type_id", 4)
}

func TestResolveReturnsExistingSlot(t *testing.T) {
	store := newFakeQuestionStore()
	existing := &model.Question{
		BaseModel:    model.BaseModel{ID: 42},
		DepartmentID: 1, CourseID: 2, SemesterID: 3, ExamTypeID: 4,
		Status: model.StatusRejected,
	}
	store.questions[slotKey{1, 2, 3, 4, ""}] = existing

	svc := NewQuestionService(store)
	got, err := svc.Resolve(1, 2, 3, 4, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 42 {
		t.Fatalf("got ID %d, want 42", got.ID)
	}
	// 已存在的记录原样返回，状态不因重复上传改变
	if got.Status != model.StatusRejected {
		t.Fatalf("got status %q, want rejected", got.Status)
	}
	if store.createdCount != 0 {
		t.Fatalf("created %d questions, want 0", store.createdCount)
	}
}

func TestResolveNormalizesSection(t *testing.T) {
	store := newFakeQuestionStore()
	seedAllAxes(store)
	svc := NewQuestionService(store)

	first, err := svc.Resolve(1, 2, 3, 4, " A ")
	if err != nil {
		t.Fatal(err)
	}
	if first.Section != "A" {
		t.Fatalf("got section %q, want %q", first.Section, "A")
	}

	second, err := svc.Resolve(1, 2, 3, 4, "A")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatalf("whitespace variants resolved to different slots: %d vs %d", second.ID, first.ID)
	}
}

func TestResolveBlankSectionVariantsShareSlot(t *testing.T) {
	store := newFakeQuestionStore()
	seedAllAxes(store)
	svc := NewQuestionService(store)

	first, err := svc.Resolve(1, 2, 3, 4, "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Resolve(1, 2, 3, 4, "   ")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatalf("blank variants resolved to different slots: %d vs %d", second.ID, first.ID)
	}
	if store.createdCount != 1 {
		t.Fatalf("created %d questions, want 1", store.createdCount)
	}
}

func TestResolveAutoPublish(t *testing.T) {
	cases := []struct {
		name       string
		omitColumn string
		want       model.QuestionStatus
	}{
		{"all axes published", "", model.StatusPublished},
		{"new department", "department_id", model.StatusPendingReview},
		{"new course", "course_id", model.StatusPendingReview},
		{"new semester", "semester_id", model.StatusPendingReview},
		{"new exam type", "exam_type_id", model.StatusPendingReview},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeQuestionStore()
			seedAllAxes(store)
			if tc.omitColumn != "" {
				delete(store.publishedAxes, tc.omitColumn)
			}

			svc := NewQuestionService(store)
			got, err := svc.Resolve(1, 2, 3, 4, "")
			if err != nil {
				t.Fatal(err)
			}
			if got.Status != tc.want {
				t.Fatalf("got status %q, want %q", got.Status, tc.want)
			}
		})
	}
}

func TestResolveDuplicateKeyRace(t *testing.T) {
	store := newFakeQuestionStore()
	seedAllAxes(store)

	winner := &model.Question{
		BaseModel:    model.BaseModel{ID: 7},
		DepartmentID: 1, CourseID: 2, SemesterID: 3, ExamTypeID: 4,
		Status: model.StatusPublished,
	}
	store.questions[slotKey{1, 2, 3, 4, ""}] = winner
	// 第一次查找miss，插入撞唯一索引，重查时拿到并发赢家
	store.skipLookups = 1
	store.createErr = gorm.ErrDuplicatedKey

	svc := NewQuestionService(store)
	got, err := svc.Resolve(1, 2, 3, 4, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != winner.ID {
		t.Fatalf("got ID %d, want concurrent winner %d", got.ID, winner.ID)
	}
}

func TestFindDuplicate(t *testing.T) {
	store := newFakeQuestionStore()
	oldest := &model.Question{BaseModel: model.BaseModel{ID: 3}, Status: model.StatusPublished}
	store.oldestByKey[slotKey{1, 2, 3, 4, ""}] = oldest

	svc := NewQuestionService(store)

	got, err := svc.FindDuplicate(1, 2, 3, 4, "", 9)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != 3 {
		t.Fatalf("got %+v, want question 3", got)
	}

	// 排除自身后没有其他记录则视为无重复
	got, err = svc.FindDuplicate(1, 2, 3, 4, "", 3)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected no duplicate, got %+v", got)
	}
}
