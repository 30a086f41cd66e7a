package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/DevidBilalov/CRMshit/internal/errors"
	"github.com/DevidBilalov/CRMshit/internal/model"
	"github.com/DevidBilalov/CRMshit/internal/service"
)

// Mock repository backed by a map keyed on phone
type mockRepo struct {
	customers map[string]*model.Customer
	nextID    int
}

func newMockRepo() *mockRepo {
	return &mockRepo{customers: map[string]*model.Customer{}}
}

func (m *mockRepo) Create(c *model.Customer) error {
	if _, ok := m.customers[c.Phone]; ok {
		return appErrors.NewDuplicatePhone(c.Phone)
	}
	m.nextID++
	c.ID = m.nextID
	now := time.Now()
	c.CreatedAt = &now
	cp := *c
	m.customers[c.Phone] = &cp
	return nil
}

func (m *mockRepo) GetByID(id int) (*model.Customer, error) {
	for _, c := range m.customers {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) GetByPhone(phone string) (*model.Customer, error) {
	if c, ok := m.customers[phone]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *mockRepo) ListAll() ([]model.Customer, error) {
	out := []model.Customer{}
	for _, c := range m.customers {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockRepo) ListByCreatedDate(day time.Time) ([]model.Customer, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	out := []model.Customer{}
	for _, c := range m.customers {
		if c.CreatedAt != nil && !c.CreatedAt.Before(start) && c.CreatedAt.Before(end) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepo) UpdateInfo(phone, info string) (*model.Customer, error) {
	c, ok := m.customers[phone]
	if !ok {
		return nil, appErrors.NewCustomerNotFound(phone)
	}
	c.Info = info
	cp := *c
	return &cp, nil
}

func (m *mockRepo) DeleteByPhone(phone string) (*model.Customer, error) {
	c, ok := m.customers[phone]
	if !ok {
		return nil, appErrors.NewCustomerNotFound(phone)
	}
	delete(m.customers, phone)
	return c, nil
}

type scheduledCall struct {
	jobID      string
	customerID int
	runAt      time.Time
	grace      time.Duration
}

type mockScheduler struct {
	scheduled []scheduledCall
	cancelled []string
}

func (m *mockScheduler) Schedule(jobID string, customerID int, runAt time.Time, grace time.Duration) error {
	m.scheduled = append(m.scheduled, scheduledCall{jobID, customerID, runAt, grace})
	return nil
}

func (m *mockScheduler) Cancel(jobID string) error {
	m.cancelled = append(m.cancelled, jobID)
	return nil
}

type mockNotifier struct {
	messages []string
}

func (m *mockNotifier) Notify(message string) error {
	m.messages = append(m.messages, message)
	return nil
}

func newTestService() (*service.CustomerService, *mockRepo, *mockScheduler, *mockNotifier) {
	repo := newMockRepo()
	sched := &mockScheduler{}
	notifier := &mockNotifier{}
	return service.NewCustomerService(repo, sched, notifier), repo, sched, notifier
}

func validInput() service.AddCustomerInput {
	return service.AddCustomerInput{
		Name:       "John Doe",
		Email:      "john@example.com",
		Phone:      "+254700000001",
		ReminderAt: "15-06-2030 09:30",
		Info:       "VIP",
	}
}

func TestAddCustomerMissingFields(t *testing.T) {
	svc, repo, sched, _ := newTestService()

	in := validInput()
	in.Name = ""
	_, err := svc.AddCustomer(in)
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))

	// no state change
	assert.Empty(t, repo.customers)
	assert.Empty(t, sched.scheduled)
}

func TestAddCustomerInvalidEmail(t *testing.T) {
	svc, _, sched, _ := newTestService()

	in := validInput()
	in.Email = "not-an-email"
	_, err := svc.AddCustomer(in)
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	assert.Empty(t, sched.scheduled)
}

func TestAddCustomerBadReminderDate(t *testing.T) {
	svc, repo, sched, _ := newTestService()

	in := validInput()
	in.ReminderAt = "2030-06-15 09:30"
	_, err := svc.AddCustomer(in)
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))

	assert.Empty(t, repo.customers)
	assert.Empty(t, sched.scheduled)
}

func TestAddCustomerSchedulesReminder(t *testing.T) {
	svc, _, sched, _ := newTestService()

	customer, err := svc.AddCustomer(validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, customer.ID)

	require.Len(t, sched.scheduled, 1)
	call := sched.scheduled[0]
	assert.Equal(t, "admin_reminder_1", call.jobID)
	assert.Equal(t, 1, call.customerID)
	assert.Equal(t, service.ReminderGracePeriod, call.grace)

	expected := time.Date(2030, 6, 15, 9, 30, 0, 0, time.Local)
	assert.True(t, call.runAt.Equal(expected), "expected run_at %v, got %v", expected, call.runAt)
}

func TestAddCustomerDuplicatePhone(t *testing.T) {
	svc, _, sched, _ := newTestService()

	_, err := svc.AddCustomer(validInput())
	require.NoError(t, err)

	in := validInput()
	in.Name = "Someone Else"
	_, err = svc.AddCustomer(in)
	require.Error(t, err)
	assert.True(t, appErrors.IsDuplicate(err))

	// only the first add scheduled anything
	assert.Len(t, sched.scheduled, 1)
}

func TestSearchByPhoneNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.SearchByPhone("+404")
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestSearchByDateBadFormat(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.SearchByDate("2030/06/15")
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
}

func TestUpdateInfo(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.AddCustomer(validInput())
	require.NoError(t, err)

	updated, err := svc.UpdateInfo("+254700000001", "call next week")
	require.NoError(t, err)
	assert.Equal(t, "call next week", updated.Info)
}

func TestDeleteCustomerLeavesReminderPending(t *testing.T) {
	svc, repo, sched, _ := newTestService()

	_, err := svc.AddCustomer(validInput())
	require.NoError(t, err)

	deleted, err := svc.DeleteCustomer("+254700000001")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", deleted.Name)
	assert.Empty(t, repo.customers)

	// by design the job is not cancelled on delete
	assert.Empty(t, sched.cancelled)
}

func TestHandleReminderNotifies(t *testing.T) {
	svc, _, _, notifier := newTestService()

	customer, err := svc.AddCustomer(validInput())
	require.NoError(t, err)

	require.NoError(t, svc.HandleReminder(customer.ID))
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "Reminder: Call John Doe (+254700000001)", notifier.messages[0])
}

func TestHandleReminderMissingCustomer(t *testing.T) {
	svc, _, _, notifier := newTestService()

	// customer 42 was never created (or was deleted since scheduling)
	require.NoError(t, svc.HandleReminder(42))
	assert.Empty(t, notifier.messages)
}
