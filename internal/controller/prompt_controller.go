// internal/controller/prompt_controller.go
package controller

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	appErrors "github.com/DevidBilalov/CRMshit/internal/errors"
	"github.com/DevidBilalov/CRMshit/internal/model"
	"github.com/DevidBilalov/CRMshit/internal/service"
)

// PromptController drives the interactive loop, collecting field input and
// rendering each action's typed result as a message. All store and scheduler
// errors stop at this boundary; the loop keeps running after any of them.
type PromptController struct {
	Service *service.CustomerService
	Out     io.Writer

	reader *bufio.Reader
}

func NewPromptController(svc *service.CustomerService, in io.Reader, out io.Writer) *PromptController {
	return &PromptController{
		Service: svc,
		Out:     out,
		reader:  bufio.NewReader(in),
	}
}

// Run processes actions until quit or end of input.
func (c *PromptController) Run() error {
	fmt.Fprintln(c.Out, "Actions: add, update, list, search-date, search-phone, delete, quit")

	for {
		fmt.Fprint(c.Out, "> ")
		line, err := c.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch strings.TrimSpace(line) {
		case "":
			continue
		case "add":
			c.handleAdd()
		case "update":
			c.handleUpdateInfo()
		case "list":
			c.handleList()
		case "search-date":
			c.handleSearchByDate()
		case "search-phone":
			c.handleSearchByPhone()
		case "delete":
			c.handleDelete()
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintln(c.Out, "Unknown action.")
		}
	}
}

func (c *PromptController) handleAdd() {
	name, err := c.prompt("Name: ")
	if err != nil {
		return
	}
	email, err := c.prompt("Email: ")
	if err != nil {
		return
	}
	phone, err := c.prompt("Phone: ")
	if err != nil {
		return
	}
	reminderAt, err := c.prompt("Reminder Date (DD-MM-YYYY HH:MM): ")
	if err != nil {
		return
	}
	info, err := c.prompt("Info (optional): ")
	if err != nil {
		return
	}

	customer, err := c.Service.AddCustomer(service.AddCustomerInput{
		Name:       name,
		Email:      email,
		Phone:      phone,
		ReminderAt: reminderAt,
		Info:       info,
	})
	if err != nil {
		fmt.Fprintln(c.Out, renderError(err))
		return
	}
	fmt.Fprintf(c.Out, "Customer %d added and reminder set.\n", customer.ID)
}

func (c *PromptController) handleUpdateInfo() {
	phone, err := c.prompt("Phone: ")
	if err != nil {
		return
	}
	info, err := c.prompt("New info: ")
	if err != nil {
		return
	}

	customer, err := c.Service.UpdateInfo(phone, info)
	if err != nil {
		fmt.Fprintln(c.Out, renderError(err))
		return
	}
	fmt.Fprintf(c.Out, "Info updated for %s.\n", customer.Name)
}

func (c *PromptController) handleList() {
	customers, err := c.Service.ListCustomers()
	if err != nil {
		fmt.Fprintln(c.Out, renderError(err))
		return
	}
	if len(customers) == 0 {
		fmt.Fprintln(c.Out, "No customers found.")
		return
	}
	for _, customer := range customers {
		fmt.Fprintf(c.Out, "%d. %s - %s - %s\n", customer.ID, customer.Name, customer.Phone, customer.Email)
	}
}

func (c *PromptController) handleSearchByDate() {
	dateStr, err := c.prompt("Date (DD-MM-YYYY): ")
	if err != nil {
		return
	}

	customers, err := c.Service.SearchByDate(dateStr)
	if err != nil {
		fmt.Fprintln(c.Out, renderError(err))
		return
	}
	if len(customers) == 0 {
		fmt.Fprintln(c.Out, "No customers found on this date.")
		return
	}
	for _, customer := range customers {
		fmt.Fprintln(c.Out, customerLine(customer))
	}
}

func (c *PromptController) handleSearchByPhone() {
	phone, err := c.prompt("Phone: ")
	if err != nil {
		return
	}

	customer, err := c.Service.SearchByPhone(phone)
	if err != nil {
		if appErrors.IsNotFound(err) {
			fmt.Fprintln(c.Out, "No customer found with this phone number.")
			return
		}
		fmt.Fprintln(c.Out, renderError(err))
		return
	}
	fmt.Fprintln(c.Out, customerLine(*customer))
}

func (c *PromptController) handleDelete() {
	phone, err := c.prompt("Phone: ")
	if err != nil {
		return
	}

	customer, err := c.Service.DeleteCustomer(phone)
	if err != nil {
		fmt.Fprintln(c.Out, renderError(err))
		return
	}
	fmt.Fprintf(c.Out, "Customer %s deleted.\n", customer.Name)
}

func (c *PromptController) prompt(label string) (string, error) {
	fmt.Fprint(c.Out, label)
	line, err := c.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func customerLine(c model.Customer) string {
	return fmt.Sprintf("%d. %s - %s - %s - %s", c.ID, c.Name, c.Phone, c.Email, c.Info)
}

func renderError(err error) string {
	var dup *appErrors.DuplicatePhoneError
	if errors.As(err, &dup) {
		return fmt.Sprintf("Error: customer with phone %s already exists.", dup.Phone)
	}
	var notFound *appErrors.CustomerNotFoundError
	if errors.As(err, &notFound) {
		return "Error: customer not found."
	}
	var invalid *appErrors.ValidationError
	if errors.As(err, &invalid) {
		return "Error: " + invalid.Message
	}
	return "Error: " + err.Error()
}
