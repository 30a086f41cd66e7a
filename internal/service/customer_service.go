// internal/service/customer_service.go
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	appErrors "github.com/DevidBilalov/CRMshit/internal/errors"
	"github.com/DevidBilalov/CRMshit/internal/model"
	"github.com/DevidBilalov/CRMshit/internal/repository"
)

const (
	// ReminderJobPrefix + customer id forms the job id, one job per customer.
	ReminderJobPrefix = "admin_reminder_"

	// ReminderGracePeriod is how late a missed reminder may still fire.
	ReminderGracePeriod = 7 * 24 * time.Hour

	reminderLayout  = "02-01-2006 15:04"
	searchDayLayout = "02-01-2006"
)

// ReminderScheduler is the slice of the scheduler the service needs.
type ReminderScheduler interface {
	Schedule(jobID string, customerID int, runAt time.Time, grace time.Duration) error
	Cancel(jobID string) error
}

// Notifier delivers the reminder message to whoever is listening.
type Notifier interface {
	Notify(message string) error
}

// CustomerService implements the user-facing operations as typed
// command/result calls, independent of any presentation surface.
type CustomerService struct {
	Repo      repository.CustomerRepositoryInterface
	Scheduler ReminderScheduler
	Notifier  Notifier

	validate *validator.Validate
}

func NewCustomerService(repo repository.CustomerRepositoryInterface, sched ReminderScheduler, notifier Notifier) *CustomerService {
	return &CustomerService{
		Repo:      repo,
		Scheduler: sched,
		Notifier:  notifier,
		validate:  validator.New(),
	}
}

type AddCustomerInput struct {
	Name       string `validate:"required"`
	Email      string `validate:"required,email"`
	Phone      string `validate:"required"`
	ReminderAt string `validate:"required"`
	Info       string
}

// AddCustomer creates a customer and registers their one-shot reminder. The
// customer row and the job live in independently-persisted stores; if
// scheduling fails after the insert, the row is kept and the error surfaced.
func (s *CustomerService) AddCustomer(in AddCustomerInput) (*model.Customer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.ReminderAt = strings.TrimSpace(in.ReminderAt)
	in.Info = strings.TrimSpace(in.Info)

	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	runAt, err := time.ParseInLocation(reminderLayout, in.ReminderAt, time.Local)
	if err != nil {
		return nil, appErrors.NewValidation("reminder_at", "Invalid date format. Use DD-MM-YYYY HH:MM.")
	}

	existing, err := s.Repo.GetByPhone(in.Phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, appErrors.NewDuplicatePhone(in.Phone)
	}

	c := &model.Customer{
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
		Info:  in.Info,
	}
	if err := s.Repo.Create(c); err != nil {
		return nil, err
	}

	jobID := fmt.Sprintf("%s%d", ReminderJobPrefix, c.ID)
	if err := s.Scheduler.Schedule(jobID, c.ID, runAt, ReminderGracePeriod); err != nil {
		log.Warn().Err(err).Str("job_id", jobID).Msg("⚠️ customer created but reminder not scheduled")
		return c, err
	}

	log.Info().Int("customer_id", c.ID).Str("phone", c.Phone).Msg("customer added and reminder set")
	return c, nil
}

// UpdateInfo replaces the info note of the customer with the given phone.
func (s *CustomerService) UpdateInfo(phone, info string) (*model.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, appErrors.NewValidation("phone", "Please fill in all fields.")
	}
	return s.Repo.UpdateInfo(phone, strings.TrimSpace(info))
}

// ListCustomers returns a snapshot of all customers.
func (s *CustomerService) ListCustomers() ([]model.Customer, error) {
	return s.Repo.ListAll()
}

// SearchByDate returns customers created on the given DD-MM-YYYY day.
func (s *CustomerService) SearchByDate(dateStr string) ([]model.Customer, error) {
	day, err := time.ParseInLocation(searchDayLayout, strings.TrimSpace(dateStr), time.Local)
	if err != nil {
		return nil, appErrors.NewValidation("date", "Invalid date format. Use DD-MM-YYYY.")
	}
	return s.Repo.ListByCreatedDate(day)
}

// SearchByPhone returns the customer with the given phone.
func (s *CustomerService) SearchByPhone(phone string) (*model.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, appErrors.NewValidation("phone", "Please fill in all fields.")
	}

	c, err := s.Repo.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewCustomerNotFound(phone)
	}
	return c, nil
}

// DeleteCustomer removes the customer with the given phone. The pending
// reminder job is intentionally left in place; when it fires, HandleReminder
// treats the missing customer as a local, non-fatal condition.
func (s *CustomerService) DeleteCustomer(phone string) (*model.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, appErrors.NewValidation("phone", "Please fill in all fields.")
	}
	return s.Repo.DeleteByPhone(phone)
}

// HandleReminder is the scheduler callback. A customer deleted since the job
// was scheduled is logged and swallowed; the job stays terminal either way.
func (s *CustomerService) HandleReminder(customerID int) error {
	c, err := s.Repo.GetByID(customerID)
	if err != nil {
		return err
	}
	if c == nil {
		log.Warn().Int("customer_id", customerID).Msg("⚠️ reminder fired for missing customer")
		return nil
	}

	return s.Notifier.Notify(fmt.Sprintf("Reminder: Call %s (%s)", c.Name, c.Phone))
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "email" {
			return appErrors.NewValidation(fe.Field(), "Invalid email address.")
		}
		return appErrors.NewValidation(fe.Field(), "Please fill in all fields.")
	}
	return appErrors.NewValidation("", "Please fill in all fields.")
}
