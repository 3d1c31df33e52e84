package feedback_test

import (
	"context"
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campusvoice/backend/core"
	"github.com/campusvoice/backend/core/feedback"
	"github.com/campusvoice/backend/core/user"
	"github.com/campusvoice/backend/services/email"
	"github.com/campusvoice/backend/services/logger"
	"github.com/campusvoice/backend/storage/database/inmem"
)

func setup(t *testing.T) (*feedback.Service, feedback.Repository, user.Repository) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	conf := &core.Config{AppName: "CampusVoice"}
	fbRepo := inmemdb.NewFeedbackRepository(db)
	usrRepo := inmemdb.NewUserRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	logger := logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0))

	emailsvc.ClearSentMessages()
	return feedback.NewService(fbRepo, usrRepo, mailSvc, logger), fbRepo, usrRepo
}

func createStudent(t *testing.T, repo user.Repository, name, email string) user.User {
	t.Helper()
	usr := user.User{Name: name, Email: email, Role: user.RoleStudent, CreatedAt: time.Now().UTC()}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return usr
}

func submit(t *testing.T, svc *feedback.Service, studentID, category string, anonymous bool) feedback.Feedback {
	t.Helper()
	fb, err := svc.Submit(context.Background(), feedback.NewFeedback{
		Content:     "too loud HVAC",
		Rating:      2,
		Category:    category,
		IsAnonymous: anonymous,
	}, studentID)
	if err != nil {
		t.Fatalf("submit() failed: %v", err)
	}
	return fb
}

func TestService_Submit(t *testing.T) {
	svc, _, usrRepo := setup(t)
	usr := createStudent(t, usrRepo, "Ana", "ana@x.com")

	fb := submit(t, svc, usr.ID, "Facilities", true)

	assert.NotEmpty(t, fb.ID)
	assert.Equal(t, usr.ID, fb.StudentID)
	assert.Equal(t, feedback.StatusOpen, fb.Status)
	assert.Empty(t, fb.Thread)
	assert.Nil(t, fb.ResolutionLog)
	assert.False(t, fb.CreatedAt.IsZero())
}

func TestService_notFound(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.GetForAdmin(ctx, "missing")
	assert.Equal(t, feedback.ErrNotFound, err)

	_, err = svc.SetStatus(ctx, "missing", feedback.StatusResolved)
	assert.Equal(t, feedback.ErrNotFound, err)

	_, err = svc.AddReply(ctx, "missing", "hello", "admin-id")
	assert.Equal(t, feedback.ErrNotFound, err)
}

func TestService_AddReply_autoAdvance(t *testing.T) {
	svc, _, usrRepo := setup(t)
	ctx := context.Background()
	usr := createStudent(t, usrRepo, "Ana", "ana@x.com")
	fb := submit(t, svc, usr.ID, "Facilities", false)

	// first reply on an open feedback advances it
	fb, err := svc.AddReply(ctx, fb.ID, "we are on it", "admin-id")
	if err != nil {
		t.Fatalf("AddReply() failed: %v", err)
	}
	assert.Equal(t, feedback.StatusInProgress, fb.Status)
	if assert.Len(t, fb.Thread, 1) {
		assert.Equal(t, "admin-id", fb.Thread[0].AuthorID)
		assert.Equal(t, "we are on it", fb.Thread[0].Content)
	}

	// replies append, never dedup; status stays in_progress
	fb, err = svc.AddReply(ctx, fb.ID, "we are on it", "admin-id")
	if err != nil {
		t.Fatalf("AddReply() failed: %v", err)
	}
	assert.Equal(t, feedback.StatusInProgress, fb.Status)
	assert.Len(t, fb.Thread, 2)

	// replying to a resolved feedback leaves the status alone
	if _, err = svc.SetStatus(ctx, fb.ID, feedback.StatusResolved); err != nil {
		t.Fatalf("SetStatus() failed: %v", err)
	}
	fb, err = svc.AddReply(ctx, fb.ID, "closing note", "admin-id")
	if err != nil {
		t.Fatalf("AddReply() failed: %v", err)
	}
	assert.Equal(t, feedback.StatusResolved, fb.Status)
	assert.Len(t, fb.Thread, 3)
}

func TestService_AddReply_notifiesStudent(t *testing.T) {
	svc, _, usrRepo := setup(t)
	usr := createStudent(t, usrRepo, "Ana", "ana@x.com")
	fb := submit(t, svc, usr.ID, "Facilities", false)

	if _, err := svc.AddReply(context.Background(), fb.ID, "we are on it", "admin-id"); err != nil {
		t.Fatalf("AddReply() failed: %v", err)
	}

	if assert.Len(t, emailsvc.SentMessages, 1) {
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, usr.Email, msg.To[0].Address)
		assert.Contains(t, msg.Subject, "reply")
	}
}

func TestService_AddReply_missingStudentStillReplies(t *testing.T) {
	svc, _, _ := setup(t)

	fb := submit(t, svc, "gone-student", "Facilities", false)
	fb, err := svc.AddReply(context.Background(), fb.ID, "anyone there?", "admin-id")
	if err != nil {
		t.Fatalf("AddReply() failed: %v", err)
	}
	assert.Len(t, fb.Thread, 1)
	assert.Empty(t, emailsvc.SentMessages)
}

func TestService_SetStatus(t *testing.T) {
	svc, _, usrRepo := setup(t)
	ctx := context.Background()
	usr := createStudent(t, usrRepo, "Ana", "ana@x.com")
	fb := submit(t, svc, usr.ID, "Facilities", false)

	// any label is accepted, including reopening a resolved feedback
	for _, status := range []string{feedback.StatusResolved, feedback.StatusOpen, "escalated"} {
		got, err := svc.SetStatus(ctx, fb.ID, status)
		if err != nil {
			t.Fatalf("SetStatus(%q) failed: %v", status, err)
		}
		assert.Equal(t, status, got.Status)
	}
}

func TestService_anonymityMask(t *testing.T) {
	svc, _, usrRepo := setup(t)
	ctx := context.Background()
	usr := createStudent(t, usrRepo, "Ana", "ana@x.com")

	anon := submit(t, svc, usr.ID, "Facilities", true)
	known := submit(t, svc, usr.ID, "Courses", false)
	orphan := submit(t, svc, "gone-student", "Courses", false)

	views, err := svc.ListForAdmin(ctx)
	if err != nil {
		t.Fatalf("ListForAdmin() failed: %v", err)
	}

	byID := make(map[string]feedback.AdminView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}

	// anonymous: masked even though the student record exists
	assert.Equal(t, feedback.AnonymousName, byID[anon.ID].StudentName)
	assert.Equal(t, "", byID[anon.ID].StudentEmail)

	// known student: resolved through the user directory
	assert.Equal(t, "Ana", byID[known.ID].StudentName)
	assert.Equal(t, "ana@x.com", byID[known.ID].StudentEmail)

	// missing student record degrades instead of failing the listing
	assert.Equal(t, feedback.UnknownUserName, byID[orphan.ID].StudentName)
	assert.Equal(t, "", byID[orphan.ID].StudentEmail)

	// same masking on single retrieval
	view, err := svc.GetForAdmin(ctx, anon.ID)
	if err != nil {
		t.Fatalf("GetForAdmin() failed: %v", err)
	}
	assert.Equal(t, feedback.AnonymousName, view.StudentName)
}

func TestService_ListForStudent(t *testing.T) {
	svc, _, usrRepo := setup(t)
	ctx := context.Background()
	ana := createStudent(t, usrRepo, "Ana", "ana@x.com")
	ben := createStudent(t, usrRepo, "Ben", "ben@x.com")

	first := submit(t, svc, ana.ID, "Facilities", false)
	submit(t, svc, ben.ID, "Courses", false)
	second := submit(t, svc, ana.ID, "Courses", true)

	all, err := svc.ListForStudent(ctx, ana.ID)
	if err != nil {
		t.Fatalf("ListForStudent() failed: %v", err)
	}
	if assert.Len(t, all, 2) {
		assert.Equal(t, first.ID, all[0].ID)
		assert.Equal(t, second.ID, all[1].ID)
	}
}

func TestService_counts(t *testing.T) {
	svc, _, usrRepo := setup(t)
	ctx := context.Background()
	usr := createStudent(t, usrRepo, "Ana", "ana@x.com")

	fb1 := submit(t, svc, usr.ID, "Facilities", false)
	submit(t, svc, usr.ID, "Courses", false)
	submit(t, svc, usr.ID, "Courses", false)

	if _, err := svc.SetStatus(ctx, fb1.ID, feedback.StatusResolved); err != nil {
		t.Fatalf("SetStatus() failed: %v", err)
	}

	statusCounts, err := svc.StatusCounts(ctx)
	if err != nil {
		t.Fatalf("StatusCounts() failed: %v", err)
	}
	assert.Equal(t, []feedback.Count{
		{Label: feedback.StatusOpen, Count: 2},
		{Label: feedback.StatusResolved, Count: 1},
	}, statusCounts)

	categoryCounts, err := svc.CategoryCounts(ctx)
	if err != nil {
		t.Fatalf("CategoryCounts() failed: %v", err)
	}
	assert.Equal(t, []feedback.Count{
		{Label: "Courses", Count: 2},
		{Label: "Facilities", Count: 1},
	}, categoryCounts)
}
