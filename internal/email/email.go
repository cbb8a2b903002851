// Package email renders candidate emails from templates and hands them to a
// Dispatcher for delivery.
package email

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Dispatcher delivers rendered messages.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Render fills the template placeholders for candidate c. candidateName
// defaults to the candidate's name; placeholders without a value are kept.
func Render(tpl *types.EmailTemplate, c *types.Candidate, vars map[string]string) Message {
	values := make(map[string]string, len(vars)+1)
	values["candidateName"] = c.Name
	for k, v := range vars {
		values[k] = v
	}

	fill := func(s string) string {
		return placeholder.ReplaceAllStringFunc(s, func(m string) string {
			name := placeholder.FindStringSubmatch(m)[1]
			if v, ok := values[name]; ok {
				return v
			}
			return m
		})
	}

	return Message{
		To:      c.Email,
		Subject: fill(tpl.Subject),
		Body:    strings.TrimSpace(fill(tpl.Body)),
	}
}

// Placeholders lists the distinct placeholder names used by the template in
// order of first appearance.
func Placeholders(tpl *types.EmailTemplate) []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, m := range placeholder.FindAllStringSubmatch(tpl.Subject+"\n"+tpl.Body, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// LogDispatcher writes messages to the log instead of sending them.
type LogDispatcher struct {
	log *zap.Logger
}

// NewLogDispatcher creates a LogDispatcher.
func NewLogDispatcher(log *zap.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

// Send logs the message.
func (d *LogDispatcher) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("failed to send email: no recipient")
	}
	d.log.Info("email dispatched",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.Body)))
	return nil
}

var _ Dispatcher = (*LogDispatcher)(nil)
