// Package fakes holds in-memory repositories and a recording publisher for
// handler and service tests that should not need a database or broker.
package fakes

import (
	"context"
	"errors"
	"sort"
	"sync"

	"lms-service/internal/course"
	"lms-service/internal/user"
)

// ErrStoreDown can be injected to simulate a persistence outage.
var ErrStoreDown = errors.New("store unavailable")

type UserRepository struct {
	mu     sync.Mutex
	nextID int
	users  map[int]user.User
	Err    error
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, users: make(map[int]user.User)}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, user.ErrDuplicateUser
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = *u
	return u, nil
}

func (r *UserRepository) GetAll(ctx context.Context) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.Username == username })
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.Email == email })
}

func (r *UserRepository) find(match func(user.User) bool) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	r.users[u.ID] = *u
	return nil
}

type CourseRepository struct {
	mu               sync.Mutex
	nextCourseID     int
	nextAssignmentID int
	courses          map[int]course.Course
	assignments      map[int]course.Assignment
	Err              error
}

func NewCourseRepository() *CourseRepository {
	return &CourseRepository{
		nextCourseID:     1,
		nextAssignmentID: 1,
		courses:          make(map[int]course.Course),
		assignments:      make(map[int]course.Assignment),
	}
}

func (r *CourseRepository) CreateCourse(ctx context.Context, c *course.Course) (*course.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	c.ID = r.nextCourseID
	r.nextCourseID++
	r.courses[c.ID] = *c
	return c, nil
}

// PutCourse stores c with the given ID; tests use it to pin ids.
func (r *CourseRepository) PutCourse(c course.Course) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[c.ID] = c
	if c.ID >= r.nextCourseID {
		r.nextCourseID = c.ID + 1
	}
}

// PutAssignment stores a with the given ID.
func (r *CourseRepository) PutAssignment(a course.Assignment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[a.ID] = a
	if a.ID >= r.nextAssignmentID {
		r.nextAssignmentID = a.ID + 1
	}
}

func (r *CourseRepository) GetAllCourses(ctx context.Context) ([]course.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]course.Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CourseRepository) GetCourseByID(ctx context.Context, id int) (*course.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	c, ok := r.courses[id]
	if !ok {
		return nil, course.ErrCourseNotFound
	}
	return &c, nil
}

func (r *CourseRepository) UpdateCourse(ctx context.Context, c *course.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.courses[c.ID]; !ok {
		return course.ErrCourseNotFound
	}
	r.courses[c.ID] = *c
	return nil
}

func (r *CourseRepository) DeleteCourse(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.courses[id]; !ok {
		return course.ErrCourseNotFound
	}
	for aid, a := range r.assignments {
		if a.CourseID == id {
			delete(r.assignments, aid)
		}
	}
	delete(r.courses, id)
	return nil
}

func (r *CourseRepository) CreateAssignment(ctx context.Context, a *course.Assignment) (*course.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if _, ok := r.courses[a.CourseID]; !ok {
		return nil, course.ErrCourseNotFound
	}
	a.ID = r.nextAssignmentID
	r.nextAssignmentID++
	r.assignments[a.ID] = *a
	return a, nil
}

func (r *CourseRepository) GetAllAssignments(ctx context.Context) ([]course.Assignment, error) {
	return r.assignmentsWhere(func(course.Assignment) bool { return true })
}

func (r *CourseRepository) GetAssignmentByID(ctx context.Context, id int) (*course.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	a, ok := r.assignments[id]
	if !ok {
		return nil, course.ErrAssignmentNotFound
	}
	return &a, nil
}

func (r *CourseRepository) GetAssignmentsByCourse(ctx context.Context, courseID int) ([]course.Assignment, error) {
	return r.assignmentsWhere(func(a course.Assignment) bool { return a.CourseID == courseID })
}

func (r *CourseRepository) assignmentsWhere(match func(course.Assignment) bool) ([]course.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]course.Assignment, 0)
	for _, a := range r.assignments {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Publisher records every published event.
type Publisher struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

type Event struct {
	Key   string
	Value interface{}
}

func (p *Publisher) Publish(ctx context.Context, key string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, Event{Key: key, Value: value})
	return nil
}

func (p *Publisher) Close() error { return nil }

func (p *Publisher) Published() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.Events...)
}
