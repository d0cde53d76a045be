// ABOUTME: Create and edit forms for the TUI
// ABOUTME: Text, number, and choice fields mapped onto contact, deal, and activity inputs
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/pages"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldNumber
	fieldChoice
)

type option struct {
	value string
	label string
}

type field struct {
	key      string
	label    string
	required bool
	kind     fieldKind
	input    textinput.Model
	options  []option
	choice   int
}

type form struct {
	tab    Tab
	id     string // empty when creating
	fields []field
	focus  int
	err    string
}

var (
	focusedLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170")).
				Width(18)

	blurredLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Width(18)
)

func textField(key, label string, required bool, value string, limit int) field {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = limit
	in.SetValue(value)
	return field{key: key, label: label, required: required, kind: fieldText, input: in}
}

func numberField(key, label string, required bool, value string) field {
	f := textField(key, label, required, value, 20)
	f.kind = fieldNumber
	return f
}

func choiceField(key, label string, required bool, options []option, value string) field {
	f := field{key: key, label: label, required: required, kind: fieldChoice, options: options}
	for i, o := range options {
		if o.value == value {
			f.choice = i
		}
	}
	return f
}

func (f field) value() string {
	if f.kind == fieldChoice {
		if f.choice < len(f.options) {
			return f.options[f.choice].value
		}
		return ""
	}
	return strings.TrimSpace(f.input.Value())
}

func (f *form) get(key string) string {
	for _, fl := range f.fields {
		if fl.key == key {
			return fl.value()
		}
	}
	return ""
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func contactOptions(contacts []models.Contact) []option {
	opts := []option{{value: "", label: "Select a contact"}}
	for _, c := range contacts {
		opts = append(opts, option{value: c.ID, label: fmt.Sprintf("%s - %s", c.Name, c.Company)})
	}
	return opts
}

func newContactForm(id string, in models.ContactInput) *form {
	var statuses []option
	for _, s := range models.ContactStatuses {
		statuses = append(statuses, option{value: string(s), label: s.Label()})
	}
	return &form{tab: TabContacts, id: id, fields: []field{
		textField("name", "Name", true, in.Name, 100),
		textField("email", "Email", false, in.Email, 100),
		textField("phone", "Phone", false, in.Phone, 30),
		textField("company", "Company", false, in.Company, 100),
		textField("position", "Position", false, in.Position, 100),
		choiceField("status", "Status", false, statuses, string(in.Status)),
	}}
}

func newDealForm(id string, in models.DealInput, contacts []models.Contact) *form {
	var stages []option
	for _, s := range models.DealStages {
		stages = append(stages, option{value: string(s), label: s.Label()})
	}
	return &form{tab: TabDeals, id: id, fields: []field{
		textField("title", "Deal Title", true, in.Title, 100),
		numberField("value", "Value ($)", true, formatNumber(in.Value)),
		choiceField("stage", "Stage", false, stages, string(in.Stage)),
		numberField("probability", "Probability (%)", false, strconv.Itoa(in.Probability)),
		choiceField("contact", "Contact", true, contactOptions(contacts), in.ContactID),
		textField("expectedClose", "Expected Close", true, in.ExpectedClose.String(), 10),
	}}
}

func newActivityForm(id string, in models.ActivityInput, contacts []models.Contact, deals []models.Deal) *form {
	types := []option{
		{value: string(models.ActivityCall), label: "Phone Call"},
		{value: string(models.ActivityEmail), label: "Email"},
		{value: string(models.ActivityMeeting), label: "Meeting"},
		{value: string(models.ActivityNote), label: "Note"},
	}
	dealOpts := []option{{value: "", label: "No associated deal"}}
	for _, d := range deals {
		dealOpts = append(dealOpts, option{value: d.ID, label: d.Title})
	}
	date := ""
	if !in.Date.IsZero() {
		date = in.Date.Format(models.DateLayout)
	}
	return &form{tab: TabActivities, id: id, fields: []field{
		choiceField("type", "Type", false, types, string(in.Type)),
		choiceField("contact", "Contact", true, contactOptions(contacts), in.ContactID),
		choiceField("deal", "Deal", false, dealOpts, in.DealID),
		textField("description", "Description", true, in.Description, 500),
		textField("date", "Date", true, date, 10),
		numberField("duration", "Duration (min)", true, strconv.Itoa(in.Duration)),
	}}
}

func (m *Model) openNewForm() {
	switch m.tab {
	case TabContacts:
		m.form = newContactForm("", pages.NewContactForm())
	case TabDeals:
		m.form = newDealForm("", m.deals.NewForm(), m.deals.Contacts())
	case TabActivities:
		m.form = newActivityForm("", m.activities.NewForm(), m.activities.Contacts(), m.activities.Deals())
	default:
		return
	}
	m.viewMode = ViewEdit
	m.updateFormFocus()
}

func (m *Model) openEditForm(id string) {
	switch m.tab {
	case TabContacts:
		for _, c := range m.contacts.All() {
			if c.ID == id {
				m.form = newContactForm(id, pages.EditContactForm(c))
			}
		}
	case TabDeals:
		for _, d := range m.deals.All() {
			if d.ID == id {
				m.form = newDealForm(id, pages.EditDealForm(d), m.deals.Contacts())
			}
		}
	case TabActivities:
		for _, a := range m.activities.All() {
			if a.ID == id {
				m.form = newActivityForm(id, pages.EditActivityForm(a), m.activities.Contacts(), m.activities.Deals())
			}
		}
	}
	if m.form != nil {
		m.viewMode = ViewEdit
		m.updateFormFocus()
	}
}

func (m Model) renderEditView() string {
	var s strings.Builder
	f := m.form
	if f == nil {
		return ""
	}

	// Title
	name := strings.ToUpper(strings.TrimSuffix(tabNames[f.tab], "s"))
	if f.id == "" {
		s.WriteString(titleStyle.Render("NEW " + name))
	} else {
		s.WriteString(titleStyle.Render("EDIT " + name))
	}
	s.WriteString("\n\n")

	// Form fields
	for i, fl := range f.fields {
		label := fl.label
		if fl.required {
			label += " *"
		}
		labelStyle := blurredLabelStyle
		if i == f.focus {
			s.WriteString("> ")
			labelStyle = focusedLabelStyle
		} else {
			s.WriteString("  ")
		}
		s.WriteString(labelStyle.Render(label))

		if fl.kind == fieldChoice {
			choice := ""
			if fl.choice < len(fl.options) {
				choice = fl.options[fl.choice].label
			}
			s.WriteString("‹ " + choice + " ›")
		} else {
			s.WriteString(fl.input.View())
		}
		s.WriteString("\n")
	}

	if f.err != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(f.err))
		s.WriteString("\n")
	}

	s.WriteString("\n")

	// Help
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab/↓: Next field",
		"←/→: Change choice",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	if f == nil {
		m.viewMode = ViewList
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.form = nil
		return m, nil
	case "tab", "down":
		f.focus = (f.focus + 1) % len(f.fields)
		return m, m.updateFormFocus()
	case "shift+tab", "up":
		f.focus = (f.focus + len(f.fields) - 1) % len(f.fields)
		return m, m.updateFormFocus()
	case "enter":
		cmd, err := m.saveForm()
		if err != nil {
			f.err = err.Error()
			return m, nil
		}
		m.viewMode = ViewList
		m.form = nil
		return m, cmd
	}

	fl := &f.fields[f.focus]
	if fl.kind == fieldChoice {
		switch msg.String() {
		case "left", "h":
			fl.choice = (fl.choice + len(fl.options) - 1) % len(fl.options)
		case "right", "l", " ":
			fl.choice = (fl.choice + 1) % len(fl.options)
		}
		return m, nil
	}

	// Update current input
	var cmd tea.Cmd
	fl.input, cmd = fl.input.Update(msg)
	return m, cmd
}

func (m *Model) updateFormFocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.form.fields {
		fl := &m.form.fields[i]
		if fl.kind == fieldChoice {
			continue
		}
		if i == m.form.focus {
			cmd = fl.input.Focus()
		} else {
			fl.input.Blur()
		}
	}
	return cmd
}

func (m Model) saveForm() (tea.Cmd, error) {
	f := m.form
	switch f.tab {
	case TabContacts:
		in := models.ContactInput{
			Name:     f.get("name"),
			Email:    f.get("email"),
			Phone:    f.get("phone"),
			Company:  f.get("company"),
			Position: f.get("position"),
			Status:   models.ContactStatus(f.get("status")),
		}
		if err := requireFields(pages.MissingContactFields(in)); err != nil {
			return nil, err
		}
		return m.lift(m.contacts.Save(f.id, in)), nil

	case TabDeals:
		value, err := parseNumber(f.get("value"), "Value")
		if err != nil {
			return nil, err
		}
		prob, err := parseInt(f.get("probability"), "Probability")
		if err != nil {
			return nil, err
		}
		closeDate, err := models.ParseDate(f.get("expectedClose"))
		if err != nil {
			return nil, fmt.Errorf("Expected Close must be YYYY-MM-DD")
		}
		in := models.DealInput{
			Title:         f.get("title"),
			Value:         value,
			Stage:         models.Stage(f.get("stage")),
			Probability:   prob,
			ContactID:     f.get("contact"),
			ExpectedClose: closeDate,
		}
		if err := requireFields(pages.MissingDealFields(in)); err != nil {
			return nil, err
		}
		if invalid := pages.InvalidDealFields(in.Value, in.Probability); len(invalid) > 0 {
			return nil, fmt.Errorf("Out of range: %s (probability 0-100)", strings.Join(invalid, ", "))
		}
		return m.lift(m.deals.Save(f.id, in)), nil

	case TabActivities:
		duration, err := parseInt(f.get("duration"), "Duration")
		if err != nil {
			return nil, err
		}
		var date time.Time
		if raw := f.get("date"); raw != "" {
			d, err := models.ParseDate(raw)
			if err != nil {
				return nil, fmt.Errorf("Date must be YYYY-MM-DD")
			}
			date = d.Time
		}
		in := models.ActivityInput{
			Type:        models.ActivityType(f.get("type")),
			ContactID:   f.get("contact"),
			DealID:      f.get("deal"),
			Description: f.get("description"),
			Date:        date,
			Duration:    duration,
		}
		if err := requireFields(pages.MissingActivityFields(in)); err != nil {
			return nil, err
		}
		return m.lift(m.activities.Save(f.id, in)), nil
	}
	return nil, nil
}

func requireFields(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("Required: %s", strings.Join(missing, ", "))
}

func parseNumber(s, label string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number", label)
	}
	return v, nil
}

func parseInt(s, label string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a whole number", label)
	}
	return v, nil
}
