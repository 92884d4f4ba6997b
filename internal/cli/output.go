package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/reposhelf/internal/fingerprint"
	"github.com/dmitrijs2005/reposhelf/internal/models"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle    = lipgloss.NewStyle().Bold(true)
)

// repoView is the serialized form of a repo.
type repoView struct {
	ID          int64      `json:"id" yaml:"id"`
	Address     string     `json:"address" yaml:"address"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	InUse       bool       `json:"inuse" yaml:"inuse"`
	Priority    int        `json:"priority" yaml:"priority"`
	PublicKey   string     `json:"pubkey,omitempty" yaml:"pubkey,omitempty"`
	Fingerprint string     `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	MaxAge      int        `json:"maxage" yaml:"maxage"`
	LastETag    *string    `json:"lastetag" yaml:"lastetag"`
	LastUpdated *time.Time `json:"lastUpdated" yaml:"lastUpdated"`
	Version     int        `json:"version" yaml:"version"`
}

func viewOf(r models.Repo) repoView {
	return repoView{
		ID:          r.ID,
		Address:     r.Address,
		Name:        r.Name,
		Description: r.Description,
		InUse:       r.InUse,
		Priority:    r.Priority,
		PublicKey:   r.PublicKey,
		Fingerprint: r.Fingerprint,
		MaxAge:      r.MaxAge,
		LastETag:    r.LastETag,
		LastUpdated: r.LastUpdated,
		Version:     r.Version,
	}
}

func validOutput(format string) error {
	switch format {
	case OutputTable, OutputJSON, OutputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("format %q cannot encode values", format)
	}
}

func printRepos(w io.Writer, format string, list []models.Repo) error {
	if format != OutputTable {
		views := make([]repoView, len(list))
		for i, r := range list {
			views[i] = viewOf(r)
		}
		return encode(w, format, views)
	}

	if len(list) == 0 {
		_, _ = fmt.Fprintln(w, "No repositories configured.")
		return nil
	}

	maxName, maxAddr := len("NAME"), len("ADDRESS")
	for _, r := range list {
		maxName = max(maxName, len(r.Name))
		maxAddr = max(maxAddr, len(r.Address))
	}

	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s\n",
		headerStyle.Render(padRight("ID", 5)),
		headerStyle.Render(padRight("NAME", maxName)),
		headerStyle.Render(padRight("ADDRESS", maxAddr)),
		headerStyle.Render(padRight("ENABLED", 8)),
		headerStyle.Render(padRight("PRIO", 5)),
		headerStyle.Render("SIGNED"),
	)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", maxName+maxAddr+36))

	for _, r := range list {
		enabled := disabledStyle.Render(padRight("no", 8))
		if r.InUse {
			enabled = enabledStyle.Render(padRight("yes", 8))
		}
		signed := "no"
		if r.IsSigned() {
			signed = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s\n",
			padRight(strconv.FormatInt(r.ID, 10), 5),
			padRight(r.Name, maxName),
			padRight(r.Address, maxAddr),
			enabled,
			padRight(strconv.Itoa(r.Priority), 5),
			signed,
		)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Total: %d repositories\n", len(list))
	return nil
}

func printRepo(w io.Writer, format string, r models.Repo) error {
	if format != OutputTable {
		return encode(w, format, viewOf(r))
	}

	etag, updated := "-", "never"
	if r.LastETag != nil {
		etag = *r.LastETag
	}
	if r.LastUpdated != nil {
		updated = r.LastUpdated.Format(time.RFC3339)
	}
	fp := "-"
	if r.Fingerprint != "" {
		fp = fingerprint.Format(r.Fingerprint)
	}

	rows := [][2]string{
		{"ID", strconv.FormatInt(r.ID, 10)},
		{"Address", r.Address},
		{"Name", r.Name},
		{"Description", r.Description},
		{"Enabled", strconv.FormatBool(r.InUse)},
		{"Priority", strconv.Itoa(r.Priority)},
		{"Fingerprint", fp},
		{"Max age", strconv.Itoa(r.MaxAge)},
		{"Last ETag", etag},
		{"Last updated", updated},
		{"Version", strconv.Itoa(r.Version)},
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render(padRight(row[0]+":", 14)), row[1])
	}
	return nil
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
