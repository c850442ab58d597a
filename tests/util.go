// Package testutil provides a fake school backend for the web tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/school"
	"github.com/trezcool/masomo-web/core/user"
)

type account struct {
	password string
	token    string
}

// Backend is an in-memory school backend serving the endpoints the web pages read and write.
// Every call is counted by "METHOD path".
type Backend struct {
	URL string

	mu          sync.Mutex
	users       map[string]user.Me // by token
	accounts    map[string]account // by email
	assignments []school.Assignment
	submissions []school.Submission
	feedbacks   []school.Feedback
	groups      []school.Group
	students    []school.Student
	teachers    []school.Teacher
	fees        []school.TuitionFee
	calls       map[string]int
	bodies      map[string][]byte     // last body by "METHOD path"
	queries     map[string]url.Values // last query by "METHOD path"
	meGate      chan struct{}
	nextID      int
}

// NewBackend starts a Backend, stopped when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		users:    make(map[string]user.Me),
		accounts: make(map[string]account),
		calls:    make(map[string]int),
		bodies:   make(map[string][]byte),
		queries:  make(map[string]url.Values),
		nextID:   100,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/get-me", b.getMe)
	mux.HandleFunc("POST /signin/signin", b.signIn)
	mux.HandleFunc("POST /register", b.register)
	mux.HandleFunc("GET /assignments/filter", b.filterAssignments)
	mux.HandleFunc("GET /assignments/student-group", b.filterAssignments)
	mux.HandleFunc("POST /assignments/create", b.createAssignment)
	mux.HandleFunc("POST /submissions/filter", b.filterSubmissions)
	mux.HandleFunc("POST /submissions/create", b.createSubmission)
	mux.HandleFunc("POST /submissions/edit", b.editSubmission)
	mux.HandleFunc("POST /grades/", b.createGrade)
	mux.HandleFunc("PUT /grades/{id}", b.updateGrade)
	mux.HandleFunc("GET /submissionFeedbacks/submission/{id}", b.submissionFeedbacks)
	mux.HandleFunc("POST /submissionFeedbacks/", b.createFeedback)
	mux.HandleFunc("PUT /submissionFeedbacks/{id}", b.updateFeedback)
	mux.HandleFunc("DELETE /submissionsFeedback/{id}", b.deleteFeedback)
	mux.HandleFunc("GET /groups/filter", b.filterGroups)
	mux.HandleFunc("POST /groups/create", b.createGroup)
	mux.HandleFunc("POST /students/search", b.searchStudents)
	mux.HandleFunc("GET /teachers", b.listTeachers)
	mux.HandleFunc("GET /tuitionFees/filter", b.filterTuitionFees)
	mux.HandleFunc("POST /tuitionFees/", b.createTuitionFee)
	mux.HandleFunc("POST /tuitionFees/by-group", b.createGroupTuitionFees)
	mux.HandleFunc("GET /courses/teacher/{id}", b.emptyList)
	mux.HandleFunc("GET /courses/student/{id}", b.emptyList)
	mux.HandleFunc("/", b.emptyObject)

	srv := httptest.NewServer(b.count(mux))
	t.Cleanup(srv.Close)
	b.URL = srv.URL
	return b
}

// Config returns a test configuration pointing at the backend.
func (b *Backend) Config() *core.Config {
	return &core.Config{
		AppName:   "Masomo",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "test-secret-key-that-is-long-enough!!",
		Server: core.ServerConfig{
			Addr:           ":0",
			DisableReqLogs: true,
		},
		Backend: core.BackendConfig{BaseURL: b.URL},
		Session: core.SessionConfig{
			Driver:     core.SessionDriverCookie,
			CookieName: "access",
			TTL:        time.Hour,
		},
		Cache: core.CacheConfig{
			KeepUnusedFor:  time.Minute,
			MaxSessions:    100,
			SessionIdleTTL: time.Minute,
		},
		Identity: core.IdentityConfig{LoadingWait: 2 * time.Second},
	}
}

// AddUser registers me with password and returns its session token.
func (b *Backend) AddUser(me user.Me, password string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	token := "token-" + strconv.Itoa(me.ID) + "-" + me.Email
	b.users[token] = me
	b.accounts[me.Email] = account{password: password, token: token}
	return token
}

// Revoke makes the backend refuse token.
func (b *Backend) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.users, token)
}

// HoldIdentity blocks identity requests until the returned func is called.
func (b *Backend) HoldIdentity() (release func()) {
	gate := make(chan struct{})
	b.mu.Lock()
	b.meGate = gate
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.meGate = nil
			b.mu.Unlock()
			close(gate)
		})
	}
}

// AddAssignment stores a, returned by every assignment read.
func (b *Backend) AddAssignment(a school.Assignment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.assignments = append(b.assignments, a)
}

// AddSubmission stores s, with its embedded grade and feedback as given.
func (b *Backend) AddSubmission(s school.Submission) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submissions = append(b.submissions, s)
}

// Submissions returns the stored submissions.
func (b *Backend) Submissions() []school.Submission {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]school.Submission{}, b.submissions...)
}

// AddFeedback stores f, listed by the feedback reads of its submission.
func (b *Backend) AddFeedback(f school.Feedback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.feedbacks = append(b.feedbacks, f)
}

func (b *Backend) AddGroup(g school.Group) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups = append(b.groups, g)
}

// AddStudent stores s; tuition fees billed to its group reach it.
func (b *Backend) AddStudent(s school.Student) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.students = append(b.students, s)
}

func (b *Backend) AddTeacher(t school.Teacher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.teachers = append(b.teachers, t)
}

// Calls returns how many times `method path` was called.
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method+" "+path]
}

// LastBody decodes the body of the last `method path` call into v.
func (b *Backend) LastBody(t *testing.T, method, path string, v interface{}) {
	t.Helper()
	b.mu.Lock()
	body, ok := b.bodies[method+" "+path]
	b.mu.Unlock()
	if !ok {
		t.Fatalf("no %s %s call", method, path)
	}
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decoding %s %s body: %v", method, path, err)
	}
}

// LastQuery returns the query string of the last `method path` call.
func (b *Backend) LastQuery(method, path string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[method+" "+path]
}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.calls[key]++
		b.bodies[key] = body
		b.queries[key] = r.URL.Query()
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) getMe(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	gate := b.meGate
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	me, ok := b.users[token]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, user.MeResponse{Success: true, Data: &me})
}

func (b *Backend) signIn(w http.ResponseWriter, r *http.Request) {
	var creds user.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return
	}
	b.mu.Lock()
	acc, ok := b.accounts[creds.Email]
	b.mu.Unlock()
	if !ok || acc.password != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, user.TokenResponse{Success: true, Token: acc.token})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var nu user.NewUser
	if err := json.NewDecoder(r.Body).Decode(&nu); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return
	}
	b.mu.Lock()
	_, exists := b.accounts[nu.Email]
	b.nextID++
	id := b.nextID
	b.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"message": "User already exists",
			"errors":  map[string]string{"email": "email is already taken"},
		})
		return
	}
	token := b.AddUser(user.Me{
		ID:        id,
		UserID:    id,
		Email:     nu.Email,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Patronym:  nu.Patronym,
		Role:      nu.Role,
		IsActive:  true,
	}, nu.Password)
	writeJSON(w, http.StatusCreated, user.TokenResponse{Success: true, Token: token})
}

func (b *Backend) filterAssignments(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	data := append([]school.Assignment{}, b.assignments...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, school.AssignmentsResponse{Data: data})
}

func (b *Backend) createAssignment(w http.ResponseWriter, r *http.Request) {
	var na school.NewAssignment
	if err := json.NewDecoder(r.Body).Decode(&na); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return
	}
	b.mu.Lock()
	b.nextID++
	a := school.Assignment{
		ID:          b.nextID,
		CourseID:    na.CourseID,
		TeacherID:   na.TeacherID,
		Title:       na.Title,
		Description: na.Description,
		AssignDate:  na.AssignDate,
		DueDate:     na.DueDate,
		MaxGrade:    na.MaxGrade,
	}
	b.assignments = append(b.assignments, a)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, a)
}

func (b *Backend) filterSubmissions(w http.ResponseWriter, r *http.Request) {
	var f school.SubmissionFilter
	if !decode(w, r, &f) {
		return
	}
	b.mu.Lock()
	data := []school.Submission{}
	for _, s := range b.submissions {
		if (f.SubmissionID == 0 || s.ID == f.SubmissionID) &&
			(f.AssignmentID == 0 || s.AssignmentID == f.AssignmentID) &&
			(f.StudentID == 0 || s.StudentID == f.StudentID) {
			data = append(data, s)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, school.SubmissionsResponse{Data: data})
}

func (b *Backend) createSubmission(w http.ResponseWriter, r *http.Request) {
	var ns school.NewSubmission
	if !decode(w, r, &ns) {
		return
	}
	b.mu.Lock()
	b.nextID++
	s := school.Submission{
		ID:           b.nextID,
		AssignmentID: ns.AssignmentID,
		StudentID:    ns.StudentID,
		Content:      ns.Content,
		SubmittedAt:  "2030-01-05T10:00:00Z",
	}
	b.submissions = append(b.submissions, s)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, s)
}

func (b *Backend) editSubmission(w http.ResponseWriter, r *http.Request) {
	var se school.SubmissionEdit
	if !decode(w, r, &se) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.submission(se.SubmissionID)
	if s == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Submission not found"})
		return
	}
	s.Content = se.Content
	writeJSON(w, http.StatusOK, s)
}

// submission must be called with b.mu held.
func (b *Backend) submission(id int) *school.Submission {
	for i := range b.submissions {
		if b.submissions[i].ID == id {
			return &b.submissions[i]
		}
	}
	return nil
}

func (b *Backend) createGrade(w http.ResponseWriter, r *http.Request) {
	var ng school.NewGrade
	if !decode(w, r, &ng) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.submission(ng.SubmissionID)
	if s == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Submission not found"})
		return
	}
	b.nextID++
	value := ng.Grade
	s.Grade = &school.SubmissionGrade{ID: b.nextID, GradeValue: &value}
	writeJSON(w, http.StatusCreated, school.Grade{ID: b.nextID, Grade: &value, SubmissionID: s.ID})
}

func (b *Backend) updateGrade(w http.ResponseWriter, r *http.Request) {
	var gu school.GradeUpdate
	if !decode(w, r, &gu) {
		return
	}
	id, _ := strconv.Atoi(r.PathValue("id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.submissions {
		if g := b.submissions[i].Grade; g != nil && g.ID == id {
			value := gu.Grade
			g.GradeValue = &value
			writeJSON(w, http.StatusOK, school.Grade{ID: id, Grade: &value, SubmissionID: b.submissions[i].ID})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Grade not found"})
}

func (b *Backend) submissionFeedbacks(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	b.mu.Lock()
	data := []school.Feedback{}
	for _, f := range b.feedbacks {
		if f.SubmissionID == id {
			data = append(data, f)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, school.FeedbacksResponse{Data: data})
}

func (b *Backend) createFeedback(w http.ResponseWriter, r *http.Request) {
	var nf school.NewFeedback
	if !decode(w, r, &nf) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	f := school.Feedback{
		ID:           b.nextID,
		SubmissionID: nf.SubmissionID,
		TeacherID:    nf.TeacherID,
		FeedbackText: nf.FeedbackText,
		FeedbackDate: "2030-01-06",
	}
	b.feedbacks = append(b.feedbacks, f)
	if s := b.submission(nf.SubmissionID); s != nil {
		s.FeedbackGiven = true
	}
	writeJSON(w, http.StatusCreated, f)
}

func (b *Backend) updateFeedback(w http.ResponseWriter, r *http.Request) {
	var fu school.FeedbackUpdate
	if !decode(w, r, &fu) {
		return
	}
	id, _ := strconv.Atoi(r.PathValue("id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.feedbacks {
		if b.feedbacks[i].ID == id {
			b.feedbacks[i].FeedbackText = fu.FeedbackText
			writeJSON(w, http.StatusOK, b.feedbacks[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Feedback not found"})
}

func (b *Backend) deleteFeedback(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, f := range b.feedbacks {
		if f.ID == id {
			b.feedbacks = append(b.feedbacks[:i], b.feedbacks[i+1:]...)
			writeJSON(w, http.StatusOK, school.FeedbackDeletion{Message: "Feedback deleted", DeletedFeedbackID: id})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Feedback not found"})
}

func (b *Backend) filterGroups(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	data := append([]school.Group{}, b.groups...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, school.GroupsResponse{Groups: data})
}

func (b *Backend) createGroup(w http.ResponseWriter, r *http.Request) {
	var ng school.NewGroup
	if !decode(w, r, &ng) {
		return
	}
	b.mu.Lock()
	b.nextID++
	g := school.Group{ID: b.nextID, Name: ng.Name, GradeLevel: ng.GradeLevel, StartYear: ng.StartYear, CuratorID: ng.CuratorID}
	b.groups = append(b.groups, g)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, g)
}

func (b *Backend) searchStudents(w http.ResponseWriter, r *http.Request) {
	var search school.StudentSearch
	if !decode(w, r, &search) {
		return
	}
	b.mu.Lock()
	data := []school.Student{}
	for _, s := range b.students {
		if search.GroupID == 0 || s.GroupID == search.GroupID {
			data = append(data, s)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, school.StudentsResponse{Students: data})
}

func (b *Backend) listTeachers(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	data := append([]school.Teacher{}, b.teachers...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, data)
}

func (b *Backend) filterTuitionFees(w http.ResponseWriter, r *http.Request) {
	studentID, _ := strconv.Atoi(r.URL.Query().Get("student_id"))
	b.mu.Lock()
	list := school.TuitionFeeList{TuitionFees: []school.TuitionFee{}}
	for _, f := range b.fees {
		if studentID == 0 || f.StudentID == studentID {
			list.TuitionFees = append(list.TuitionFees, f)
			list.Count++
			list.TotalAmount += f.Amount
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, school.TuitionFeesResponse{Data: list})
}

func (b *Backend) createTuitionFee(w http.ResponseWriter, r *http.Request) {
	var nf school.NewTuitionFee
	if !decode(w, r, &nf) {
		return
	}
	b.mu.Lock()
	fee := b.billLocked(nf.StudentID, nf.FeePeriod)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, school.TuitionFeeCreated{TuitionFee: fee})
}

func (b *Backend) createGroupTuitionFees(w http.ResponseWriter, r *http.Request) {
	var gf school.GroupTuitionFee
	if !decode(w, r, &gf) {
		return
	}
	b.mu.Lock()
	var created school.GroupTuitionFeesCreated
	for _, s := range b.students {
		if s.GroupID == gf.GroupID {
			created.TuitionFees = append(created.TuitionFees, b.billLocked(s.ID, gf.FeePeriod))
			created.Count++
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, created)
}

func (b *Backend) billLocked(studentID int, p school.FeePeriod) school.TuitionFee {
	b.nextID++
	fee := school.TuitionFee{
		ID:          b.nextID,
		StudentID:   studentID,
		PeriodStart: p.PeriodStart,
		PeriodEnd:   p.PeriodEnd,
		Amount:      p.Amount,
		DueDate:     p.DueDate,
		Description: p.Description,
	}
	b.fees = append(b.fees, fee)
	return fee
}

func (b *Backend) emptyList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []interface{}{})
}

func (b *Backend) emptyObject(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
