package session

import (
	"context"
	"errors"
	"strings"

	"github.com/alumnx-ai-labs/agrigpt-frontend/gateway"
	"github.com/alumnx-ai-labs/agrigpt-frontend/history"
)

// ErrRequestPending is returned when a send is attempted while another
// request is still in flight.
var ErrRequestPending = errors.New("a request is already in progress")

// Validation messages shown to the user
const (
	MsgIdentityRequired = "Phone number is required"
	MsgQueryRequired    = "Query is required"
	MsgImageRequired    = "Image is required"
)

// Dispatch is one prepared gateway call. Run performs it and may be called
// from any goroutine; the Outcome must be handed back to Complete on the
// goroutine that owns the Manager.
type Dispatch struct {
	gateway   gateway.Client
	sessionID string
	text      *gateway.TextQuery
	image     *gateway.ImageQuery
}

// SessionID is the session the reply belongs to
func (d *Dispatch) SessionID() string {
	return d.sessionID
}

// IsImage reports whether the dispatch carries an image query
func (d *Dispatch) IsImage() bool {
	return d.image != nil
}

// Outcome is the result of a dispatch: exactly one of Result or Err is set
type Outcome struct {
	Result *gateway.Result
	Err    *gateway.Error
}

// Run performs the remote call. It runs once and never retries.
func (d *Dispatch) Run(ctx context.Context) Outcome {
	var (
		res *gateway.Result
		err error
	)
	if d.image != nil {
		res, err = d.gateway.SubmitImageQuery(ctx, *d.image)
	} else {
		res, err = d.gateway.SubmitTextQuery(ctx, *d.text)
	}

	if err != nil {
		return Outcome{Err: gateway.Classify(err)}
	}
	if res == nil {
		return Outcome{Err: gateway.Server("empty response from server")}
	}
	return Outcome{Result: res}
}

// PrepareText validates the draft, appends it as a user message and marks
// the manager pending. The returned Dispatch carries the text query.
func (m *Manager) PrepareText() (*Dispatch, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	m.appendUser("")
	d := &Dispatch{
		gateway:   m.gateway,
		sessionID: m.active.ID,
		text: &gateway.TextQuery{
			Identity:  m.identity.Phone,
			Text:      m.draft,
			SessionID: m.active.ID,
			Language:  m.language,
		},
	}
	m.begin(d)
	return d, nil
}

// PrepareImage is PrepareText for a query with an attached image. The
// message log keeps only the attachment's local path.
func (m *Manager) PrepareImage(att gateway.Attachment) (*Dispatch, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	if len(att.Data) == 0 {
		return nil, m.fail(gateway.Validation(MsgImageRequired))
	}

	m.appendUser(att.Path)
	d := &Dispatch{
		gateway:   m.gateway,
		sessionID: m.active.ID,
		image: &gateway.ImageQuery{
			Attachment:  att,
			Identity:    m.identity.Phone,
			Text:        m.draft,
			ResultLimit: m.resultLimit,
			SessionID:   m.active.ID,
			Language:    m.language,
		},
	}
	m.begin(d)
	return d, nil
}

// Complete applies the outcome of d. A reply is appended to the session it
// was sent from: the active one, or the archived one if the user moved on
// in the meantime. Replies for deleted sessions are dropped. A failure is
// recorded as LastError only while its session is still active.
func (m *Manager) Complete(ctx context.Context, d *Dispatch, out Outcome) {
	if d == nil || d != m.pending {
		m.log.Warn("ignoring stale reply")
		return
	}
	m.pending = nil

	if out.Err != nil {
		m.log.Warn("query failed", "session_id", d.sessionID, "class", out.Err.Class, "error", out.Err.Detail)
		if d.sessionID == m.active.ID {
			m.lastErr = out.Err
		}
		return
	}

	kind := out.Result.Kind
	if kind == "" {
		kind = history.KindText
	}

	if d.sessionID == m.active.ID {
		msg := m.newMessage(m.active, history.RoleAssistant, out.Result.Content, "", kind)
		m.active.Messages = append(m.active.Messages, msg)
		m.active.LastActivity = msg.CreatedAt
		m.draft = ""
		return
	}

	for i := range m.history {
		if m.history[i].ID != d.sessionID {
			continue
		}
		msg := m.newMessage(m.history[i], history.RoleAssistant, out.Result.Content, "", kind)
		m.history[i].Messages = append(m.history[i].Messages, msg)
		m.history[i].LastActivity = msg.CreatedAt
		m.log.Debug("reply stored in archived session", "session_id", d.sessionID)
		_ = m.persistHistory(ctx)
		return
	}

	m.log.Info("dropping reply for deleted session", "session_id", d.sessionID)
}

// SendText prepares, runs and completes a text query in one call
func (m *Manager) SendText(ctx context.Context) error {
	d, err := m.PrepareText()
	if err != nil {
		return err
	}
	return m.finish(ctx, d)
}

// SendImage prepares, runs and completes an image query in one call
func (m *Manager) SendImage(ctx context.Context, att gateway.Attachment) error {
	d, err := m.PrepareImage(att)
	if err != nil {
		return err
	}
	return m.finish(ctx, d)
}

func (m *Manager) finish(ctx context.Context, d *Dispatch) error {
	out := d.Run(ctx)
	m.Complete(ctx, d, out)
	if out.Err != nil {
		return out.Err
	}
	return nil
}

func (m *Manager) validate() error {
	if m.pending != nil {
		return ErrRequestPending
	}
	if strings.TrimSpace(m.identity.Phone) == "" {
		return m.fail(gateway.Validation(MsgIdentityRequired))
	}
	if strings.TrimSpace(m.draft) == "" {
		return m.fail(gateway.Validation(MsgQueryRequired))
	}
	return nil
}

func (m *Manager) fail(err *gateway.Error) error {
	m.lastErr = err
	return err
}

func (m *Manager) begin(d *Dispatch) {
	m.lastErr = nil
	m.pending = d
}

func (m *Manager) appendUser(attachmentRef string) {
	msg := m.newMessage(m.active, history.RoleUser, m.draft, attachmentRef, history.KindText)
	m.active.Messages = append(m.active.Messages, msg)
	m.active.LastActivity = msg.CreatedAt
}

func (m *Manager) newMessage(s history.Session, role history.Role, content, attachmentRef string, kind history.Kind) history.Message {
	at := m.stamp(s)
	return history.Message{
		ID:            m.ids.MessageID(at),
		Role:          role,
		Content:       content,
		AttachmentRef: attachmentRef,
		Kind:          kind,
		CreatedAt:     at,
	}
}
