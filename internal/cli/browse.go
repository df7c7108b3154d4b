package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/impactgraph/pkg/entity"
)

// browseCommand creates the interactive project browser.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse stored projects interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			records, err := s.db.Records(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printInfo("The database is empty")
				printNextStep("Import projects", appName+" import projects.csv")
				return nil
			}

			_, err = tea.NewProgram(NewProjectListModel(records), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle  = lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
)

// =============================================================================
// ProjectListModel - Interactive project browser
// =============================================================================

// ProjectListModel is the bubbletea model for browsing stored projects.
// Enter opens the detail card of the project under the cursor.
type ProjectListModel struct {
	Records []entity.Record
	Cursor  int
	Height  int
	Offset  int
	// Detail is true while the detail card is shown.
	Detail bool

	now func() time.Time
}

// NewProjectListModel creates a new project list model.
func NewProjectListModel(records []entity.Record) ProjectListModel {
	return ProjectListModel{
		Records: records,
		Height:  15,
		now:     time.Now,
	}
}

func (m ProjectListModel) Init() tea.Cmd {
	return nil
}

func (m ProjectListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Detail {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "esc", "enter", "backspace":
				m.Detail = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Records)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Records) > 0 {
				m.Detail = true
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m ProjectListModel) View() string {
	if m.Detail && m.Cursor < len(m.Records) {
		return m.detailView()
	}

	var b strings.Builder

	b.WriteString(StyleTitle.Render("Projects"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Records))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Records[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			r.Name,
			"@" + r.Handle,
			relationCount(r.FriendIDs, r.FriendsState),
			relationCount(r.FollowerIDs, r.FollowersState),
			formatRelativeTime(r.UpdatedAt.Time, m.clock()),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("", "Project", "Handle", "Friends", "Followers", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorOK).Bold(true)
			}
			if col >= 3 {
				return lipgloss.NewStyle().Foreground(colorMuted)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Records))))

	return b.String()
}

func (m ProjectListModel) detailView() string {
	d := m.Records[m.Cursor].Detail()

	var b strings.Builder
	b.WriteString(StyleTitle.Render(d.Name))
	b.WriteString("\n\n")
	for _, kv := range detailFields(d) {
		b.WriteString(styleLabel.Render(kv[0]) + " " + StyleValue.Render(kv[1]) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("⏎/esc back  q quit"))
	return b.String()
}

func (m ProjectListModel) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// =============================================================================
// Helpers
// =============================================================================

// relationCount shows the size of an id list, or why it is missing.
func relationCount(ids []int64, state entity.FetchState) string {
	switch state {
	case entity.StateFailed:
		return "failed"
	case entity.StateDisabled:
		return "—"
	}
	return fmt.Sprintf("%d", len(ids))
}

func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}

	diff := now.Sub(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
