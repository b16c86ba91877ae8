package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stagger/pkg/items"
	"github.com/matzehuels/stagger/pkg/lanes"
	"github.com/matzehuels/stagger/pkg/layout"
	"github.com/matzehuels/stagger/pkg/pipeline"
)

// Browse styles
var (
	browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	browseErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// defaultViewport is the main-axis length of the browse window.
const defaultViewport = 600

// =============================================================================
// Command
// =============================================================================

// browseCommand creates the browse command, an interactive layout viewer.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		engine   engineFlags
		viewport int
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "browse [items.json|items.toml]",
		Short: "Scroll through a layout interactively",
		Long: `Scroll through a layout interactively.

Every scroll or jump moves the engine to the new first item and fills the
window from there, the same way a host view does. Placements are restored
from and saved to the snapshot cache.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeItemFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd, engine)
			if err != nil {
				return err
			}
			ds, err := loadItems(args[0])
			if err != nil {
				return err
			}
			if ds.Count() == 0 {
				printWarning("Dataset is empty")
				return nil
			}

			store, err := c.newCache(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			// The TUI owns the terminal, engine logs would tear it.
			runner := pipeline.NewRunner(store, nil, log.New(io.Discard))
			defer runner.Close()

			popts := pipeline.FromConfig(cfg)
			e, err := runner.NewEngine(ds, popts)
			if err != nil {
				return err
			}
			if _, _, err := runner.Store().Load(ctx, ds.Hash(), e); err != nil {
				c.Logger.Warn("snapshot unavailable", "err", err)
			}

			final, err := tea.NewProgram(newBrowseModel(e, ds, viewport)).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(BrowseModel); ok && fm.Err != nil {
				printError("%v", fm.Err)
			}

			snap, err := runner.Store().Save(ctx, ds.Hash(), e)
			if err != nil {
				c.Logger.Warn("snapshot not saved", "err", err)
				return nil
			}
			printSuccess("Saved %d placements", len(snap.Entries))
			return nil
		},
	}

	engine.register(cmd)
	cmd.Flags().IntVar(&viewport, "viewport", defaultViewport, "main-axis length of the window")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable snapshot caching")

	return cmd
}

// =============================================================================
// BrowseModel - Interactive layout viewer
// =============================================================================

// BrowseModel is the bubbletea model for scrolling through a layout.
type BrowseModel struct {
	Engine   *layout.Engine
	Dataset  *items.Dataset
	Viewport int
	Rows     int

	Top    int
	Frames []layout.Frame
	Stats  layout.Stats
	Jump   string
	Err    error
}

// newBrowseModel creates a browse model positioned at the first item.
func newBrowseModel(e *layout.Engine, ds *items.Dataset, viewport int) BrowseModel {
	if viewport <= 0 {
		viewport = defaultViewport
	}
	m := BrowseModel{Engine: e, Dataset: ds, Viewport: viewport, Rows: 15}
	return m.moveTo(0)
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			return m.moveTo(m.Top - 1), nil
		case "down", "j":
			return m.moveTo(m.Top + 1), nil
		case "pgup", "b":
			return m.moveTo(m.Top - m.page()), nil
		case "pgdown", "f", " ":
			return m.moveTo(m.Top + m.page()), nil
		case "home", "g":
			return m.moveTo(0), nil
		case "end", "G":
			return m.moveTo(m.Dataset.Count() - 1), nil
		case "r":
			m.Engine.ItemsChanged(0)
			return m.moveTo(m.Top), nil
		case "backspace":
			if m.Jump != "" {
				m.Jump = m.Jump[:len(m.Jump)-1]
			}
		case "enter":
			if m.Jump == "" {
				return m, nil
			}
			p, err := strconv.Atoi(m.Jump)
			m.Jump = ""
			if err != nil {
				return m, nil
			}
			return m.moveTo(p), nil
		default:
			if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
				m.Jump += key
			}
		}
	case tea.WindowSizeMsg:
		m.Rows = max(msg.Height-10, 5)
		return m.moveTo(m.Top), nil
	}
	return m, nil
}

// page is the scroll distance of pgup/pgdown.
func (m BrowseModel) page() int {
	return max(len(m.Frames)-1, 1)
}

// moveTo clamps position to the dataset, moves the engine there and places
// items until the window is full.
func (m BrowseModel) moveTo(position int) BrowseModel {
	position = min(max(position, 0), m.Dataset.Count()-1)
	m.Top = position
	m.Err = nil
	m.Frames = nil

	if err := m.Engine.MoveToPosition(position, 0); err != nil {
		m.Err = err
		return m
	}
	o := m.Engine.Lanes().Orientation()
	for p := position; p < m.Dataset.Count() && len(m.Frames) < m.Rows; p++ {
		f, err := m.Engine.Place(p, lanes.End)
		if err != nil {
			m.Err = err
			break
		}
		if o.MainStart(f.Rect) >= m.Viewport {
			break
		}
		m.Frames = append(m.Frames, f)
	}
	m.Stats = m.Engine.Stats()
	return m
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Browse Layout"))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("↑/↓ scroll  pgup/pgdn page  home/end  0-9 ⏎ jump  r re-measure  q quit"))
	b.WriteString("\n\n")

	o := m.Engine.Lanes().Orientation()
	rows := make([][]string, 0, len(m.Frames))
	for _, f := range m.Frames {
		rows = append(rows, []string{
			strconv.Itoa(f.Position),
			m.Dataset.Label(f.Position),
			strconv.Itoa(f.Lane),
			fmt.Sprintf("%d–%d", o.MainStart(f.Rect), o.MainEnd(f.Rect)),
			fmt.Sprintf("%d×%d", f.Rect.Width(), f.Rect.Height()),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Pos", "Item", "Lane", "Span", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == 0 {
				return browseSelectedStyle
			}
			if col == 2 && row < len(m.Frames) {
				return lipgloss.NewStyle().Foreground(laneColor(m.Frames[row].Lane))
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(browseDimStyle.Render(fmt.Sprintf("  [%d/%d]  measured %d · cached %d · %s",
		m.Top+1, m.Dataset.Count(), m.Stats.Measured, m.Stats.Cached, m.Stats.Duration)))
	if m.Jump != "" {
		b.WriteString("  " + StyleHighlight.Render("jump to "+m.Jump))
	}
	if m.Err != nil {
		b.WriteString("\n" + browseErrorStyle.Render(m.Err.Error()))
	}

	return b.String()
}

// laneColor cycles through the palette so adjacent lanes differ.
func laneColor(lane int) lipgloss.Color {
	palette := []lipgloss.Color{colorCyan, colorGreen, colorYellow, colorBlue}
	return palette[lane%len(palette)]
}
