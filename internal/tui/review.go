// Package tui implements the interactive review screen for recurring bills
// and subscriptions.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calyptra/centsible/internal/cli"
	"github.com/calyptra/centsible/internal/model"
	"github.com/calyptra/centsible/internal/recurring"
	"github.com/calyptra/centsible/internal/service"
)

type payResultMsg struct {
	err   error
	index int
}

type toggleResultMsg struct {
	err    error
	index  int
	active bool
}

// ReviewModel lists recurring obligations and lets the user pay or pause
// them without leaving the terminal.
type ReviewModel struct {
	ctx         context.Context
	store       service.Storage
	processor   *recurring.Processor
	obligations []model.RecurringTransaction
	table       table.Model
	status      string
	now         time.Time
	dueSoonDays int
	quitting    bool
}

// NewReviewModel builds the review screen over the given obligations.
func NewReviewModel(ctx context.Context, store service.Storage, obligations []model.RecurringTransaction, dueSoonDays int) ReviewModel {
	m := ReviewModel{
		ctx:         ctx,
		store:       store,
		processor:   recurring.NewProcessor(store),
		obligations: obligations,
		now:         time.Now(),
		dueSoonDays: dueSoonDays,
	}

	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Amount", Width: 10},
		{Title: "Frequency", Width: 10},
		{Title: "Next due", Width: 12},
		{Title: "Status", Width: 10},
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(cli.SubtleColor)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(cli.PrimaryColor)

	m.table = table.New(
		table.WithColumns(columns),
		table.WithRows(m.rows()),
		table.WithFocused(true),
		table.WithHeight(min(len(obligations)+1, 12)),
	)
	m.table.SetStyles(styles)

	return m
}

// Init implements tea.Model.
func (m ReviewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "p", "enter":
			return m, m.paySelected()
		case "a":
			return m, m.toggleSelected()
		}

	case payResultMsg:
		if msg.err != nil {
			m.status = cli.FormatError(fmt.Sprintf("payment failed: %v", msg.err))
		} else {
			o := m.obligations[msg.index]
			m.status = cli.FormatSuccess(fmt.Sprintf("recorded %s, next due %s",
				o.Name, o.NextDueDate.Format("2006-01-02")))
		}
		m.table.SetRows(m.rows())
		return m, nil

	case toggleResultMsg:
		if msg.err != nil {
			m.status = cli.FormatError(fmt.Sprintf("update failed: %v", msg.err))
		} else {
			m.obligations[msg.index].Active = msg.active
			verb := "paused"
			if msg.active {
				verb = "resumed"
			}
			m.status = cli.FormatSuccess(fmt.Sprintf("%s %s", verb, m.obligations[msg.index].Name))
		}
		m.table.SetRows(m.rows())
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ReviewModel) View() string {
	if m.quitting {
		return ""
	}

	help := cli.SubtleStyle.Render("p pay · a pause/resume · q quit")
	sections := []string{
		cli.FormatTitle("Recurring bills & subscriptions"),
		m.table.View(),
		help,
	}
	if m.status != "" {
		sections = append(sections, m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m *ReviewModel) paySelected() tea.Cmd {
	index := m.table.Cursor()
	if index < 0 || index >= len(m.obligations) {
		return nil
	}

	obligation := &m.obligations[index]
	return func() tea.Msg {
		_, err := m.processor.MarkAsProcessed(m.ctx, obligation)
		return payResultMsg{index: index, err: err}
	}
}

func (m *ReviewModel) toggleSelected() tea.Cmd {
	index := m.table.Cursor()
	if index < 0 || index >= len(m.obligations) {
		return nil
	}

	obligation := m.obligations[index]
	active := !obligation.Active
	return func() tea.Msg {
		err := m.store.SetRecurringActive(m.ctx, obligation.ID, active)
		return toggleResultMsg{index: index, active: active, err: err}
	}
}

func (m *ReviewModel) rows() []table.Row {
	rows := make([]table.Row, len(m.obligations))
	for i := range m.obligations {
		o := &m.obligations[i]
		rows[i] = table.Row{
			o.Name,
			o.Amount.StringFixed(2),
			string(o.Frequency),
			o.NextDueDate.Format("2006-01-02"),
			m.statusLabel(o),
		}
	}
	return rows
}

func (m *ReviewModel) statusLabel(o *model.RecurringTransaction) string {
	switch {
	case !o.Active:
		return "paused"
	case recurring.IsOverdue(o, m.now):
		return "overdue"
	case recurring.IsDueWithin(o, m.now, m.dueSoonDays):
		return "due soon"
	default:
		return "upcoming"
	}
}
