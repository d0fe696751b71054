package schema

import (
	"fmt"
	"sort"

	// Packages
	uitable "github.com/mutablelogic/go-divyavaani/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ConversationTable implements table.TableData for a list of conversations.
type ConversationTable struct {
	Conversations       []*Conversation
	CurrentConversation string
}

// SourceTable implements table.TableData for a list of sources.
type SourceTable []Source

// PopularQuestionTable implements table.TableData for the popular
// questions report.
type PopularQuestionTable []PopularQuestion

// VoiceTable implements table.TableData for a list of voices.
type VoiceTable []Voice

// HealthTable implements table.TableData for per-dependency health.
type HealthTable HealthResponse

///////////////////////////////////////////////////////////////////////////////
// CONVERSATION TABLE (LIST)

func (t ConversationTable) Header() []string {
	return []string{"TITLE", "ID", "LANGUAGE", "MESSAGES", "MODIFIED"}
}

func (t ConversationTable) Len() int {
	return len(t.Conversations)
}

func (t ConversationTable) Row(i int) []any {
	c := t.Conversations[i]
	title := c.Title
	if title == "" && len(c.Messages) > 0 {
		title = uitable.Truncate(c.Messages[0].Text, 40)
	}
	row := []any{title, c.ID, c.Language, uint(len(c.Messages)), c.Modified}
	if t.CurrentConversation != "" && c.ID == t.CurrentConversation {
		for j, v := range row {
			row[j] = uitable.Bold{Value: v}
		}
	}
	return row
}

///////////////////////////////////////////////////////////////////////////////
// SOURCE TABLE (LIST)

func (t SourceTable) Header() []string {
	return []string{"SOURCE", "REFERENCE", "EXCERPT"}
}

func (t SourceTable) Len() int {
	return len(t)
}

func (t SourceTable) Row(i int) []any {
	s := t[i]
	return []any{s.Title, s.Reference, uitable.Truncate(s.Excerpt, 60)}
}

///////////////////////////////////////////////////////////////////////////////
// POPULAR QUESTION TABLE (LIST)

func (t PopularQuestionTable) Header() []string {
	return []string{"QUESTION", "CATEGORY", "COUNT"}
}

func (t PopularQuestionTable) Len() int {
	return len(t)
}

func (t PopularQuestionTable) Row(i int) []any {
	q := t[i]
	return []any{uitable.Truncate(q.Question, 60), q.Category, q.Count}
}

///////////////////////////////////////////////////////////////////////////////
// VOICE TABLE (LIST)

func (t VoiceTable) Header() []string {
	return []string{"VOICE", "LANGUAGE", "DESCRIPTION"}
}

func (t VoiceTable) Len() int {
	return len(t)
}

func (t VoiceTable) Row(i int) []any {
	v := t[i]
	row := []any{v.Name, v.Language, v.Description}
	if v.Default {
		for j, value := range row {
			row[j] = uitable.Bold{Value: value}
		}
	}
	return row
}

///////////////////////////////////////////////////////////////////////////////
// HEALTH TABLE (LIST)

func (t HealthTable) Header() []string {
	return []string{"SERVICE", "STATUS"}
}

func (t HealthTable) Len() int {
	return len(t.Services) + 1
}

func (t HealthTable) Row(i int) []any {
	if i == 0 {
		name := "service"
		if t.Version != "" {
			name = fmt.Sprintf("service (%s)", t.Version)
		}
		return []any{uitable.Bold{Value: name}, uitable.Status{Value: t.Status}}
	}
	// Deterministic order for the dependency rows
	names := make([]string, 0, len(t.Services))
	for name := range t.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	name := names[i-1]
	return []any{name, uitable.Status{Value: t.Services[name]}}
}
