// Package editor holds the single-writer editing session for a search tree.
// The session owns its tree exclusively; submission and live previews go
// through injected ports.
package editor

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/catalog"
	searchErrors "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/errors"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/preview"
)

// State is session bookkeeping, not part of the tree
type State int

const (
	StateIdle State = iota
	StateEditing
	StatePreviewing
	StateSubmitting
)

var stateNames = [...]string{"idle", "editing", "previewing", "submitting"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// SearchPort submits a search
type SearchPort interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
}

// CountPort fetches a preview count
type CountPort = preview.Counter

// Option configures a Session
type Option func(*Session)

// WithSearchPort sets the port used by Submit
func WithSearchPort(port SearchPort) Option {
	return func(s *Session) { s.search = port }
}

// WithPreview wires a count port for live previews; opts tune the debouncer
func WithPreview(port CountPort, opts ...preview.Option) Option {
	return func(s *Session) {
		s.countPort = port
		s.previewOpts = opts
	}
}

// Session edits one search tree
type Session struct {
	root      models.Group
	sortBy    string
	sortOrder string
	limit     *int
	offset    *int

	conditionSeq int
	groupSeq     int

	search      SearchPort
	countPort   CountPort
	previewOpts []preview.Option
	debouncer   *preview.Debouncer
	previewOn   bool

	// guarded by mu; preview results arrive on another goroutine
	mu          sync.Mutex
	state       State
	lastPreview *preview.Result
}

// NewSession starts with an empty AND root
func NewSession(opts ...Option) *Session {
	s := &Session{root: emptyRoot()}
	for _, opt := range opts {
		opt(s)
	}
	if s.countPort != nil {
		popts := append([]preview.Option{preview.WithResultHandler(s.onPreview)}, s.previewOpts...)
		s.debouncer = preview.New(s.countPort, popts...)
	}
	return s
}

func emptyRoot() models.Group {
	return models.Group{ID: models.RootGroupID, Operator: models.OperatorAND, Conditions: []models.Condition{}, Groups: []models.Group{}}
}

// State reports the current bookkeeping state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Tree returns a copy of the current tree
func (s *Session) Tree() models.Group {
	return cloneGroup(s.root)
}

// Request builds the submission body for the current tree and paging
func (s *Session) Request() models.SearchRequest {
	req := models.NewSearchRequest(cloneGroup(s.root))
	req.SortBy = s.sortBy
	req.SortOrder = s.sortOrder
	req.Limit = s.limit
	req.Offset = s.offset
	return req
}

// SetPreview turns live previews on or off. Turning it on schedules a
// preview of the current tree. It fails when no count port is wired.
func (s *Session) SetPreview(enabled bool) error {
	if s.debouncer == nil {
		return fmt.Errorf("preview is not available in this session")
	}
	s.previewOn = enabled
	if !enabled {
		s.debouncer.Cancel()
		s.setState(StateIdle)
		return nil
	}
	s.schedulePreview()
	return nil
}

// PreviewEnabled reports whether mutations trigger previews
func (s *Session) PreviewEnabled() bool { return s.previewOn }

// LastPreview returns the most recent delivered preview, if any
func (s *Session) LastPreview() (preview.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastPreview == nil {
		return preview.Result{}, false
	}
	return *s.lastPreview, true
}

// AddCondition appends a default condition to groupID (root when empty) and
// returns its id.
func (s *Session) AddCondition(groupID string) (string, error) {
	g, err := s.group(groupID)
	if err != nil {
		return "", err
	}
	field := catalog.DefaultField()
	s.conditionSeq++
	id := "c" + strconv.Itoa(s.conditionSeq)
	g.Conditions = append(g.Conditions, models.Condition{
		ID:       id,
		Field:    field.Name,
		Operator: string(field.DefaultOperator()),
		Value:    models.StringValue(""),
	})
	s.mutated()
	return id, nil
}

// AddGroup appends an empty AND subgroup to parentID (root when empty)
func (s *Session) AddGroup(parentID string) (string, error) {
	g, err := s.group(parentID)
	if err != nil {
		return "", err
	}
	s.groupSeq++
	id := "g" + strconv.Itoa(s.groupSeq)
	g.Groups = append(g.Groups, models.Group{ID: id, Operator: models.OperatorAND, Conditions: []models.Condition{}, Groups: []models.Group{}})
	s.mutated()
	return id, nil
}

// RemoveCondition deletes the condition wherever it occurs
func (s *Session) RemoveCondition(id string) error {
	if !removeCondition(&s.root, id) {
		return notFound("condition", id)
	}
	s.mutated()
	return nil
}

// RemoveGroup deletes a subgroup and its descendants. The root cannot be removed.
func (s *Session) RemoveGroup(id string) error {
	if !removeGroup(&s.root, id) {
		return notFound("group", id)
	}
	s.mutated()
	return nil
}

// ToggleOperator flips AND and OR on a group, root included
func (s *Session) ToggleOperator(groupID string) error {
	g, err := s.group(groupID)
	if err != nil {
		return err
	}
	if g.Operator == models.OperatorAND {
		g.Operator = models.OperatorOR
	} else {
		g.Operator = models.OperatorAND
	}
	s.mutated()
	return nil
}

// SetField changes a condition's field. An operator the new field does not
// support is replaced with the field's first operator.
func (s *Session) SetField(conditionID, fieldName string) error {
	c := findCondition(&s.root, conditionID)
	if c == nil {
		return notFound("condition", conditionID)
	}
	field, ok := catalog.Lookup(fieldName)
	if !ok {
		return searchErrors.NewValidationError("field", fmt.Sprintf("unknown field %q", fieldName))
	}
	c.Field = field.Name
	if !field.Supports(catalog.Operator(c.Operator)) {
		c.Operator = string(field.DefaultOperator())
	}
	s.mutated()
	return nil
}

// SetOperator changes a condition's operator within its field's valid set
func (s *Session) SetOperator(conditionID, operator string) error {
	c := findCondition(&s.root, conditionID)
	if c == nil {
		return notFound("condition", conditionID)
	}
	field, ok := catalog.Lookup(c.Field)
	if !ok || !field.Supports(catalog.Operator(operator)) {
		return searchErrors.NewValidationError("operator",
			fmt.Sprintf("operator %q is not valid for field %q", operator, c.Field))
	}
	c.Operator = operator
	s.mutated()
	return nil
}

// SetValue replaces a condition's value
func (s *Session) SetValue(conditionID string, value models.ConditionValue) error {
	c := findCondition(&s.root, conditionID)
	if c == nil {
		return notFound("condition", conditionID)
	}
	c.Value = cloneValue(value)
	s.mutated()
	return nil
}

// SetSort sets sort_by and sort_order for the next submission
func (s *Session) SetSort(by, order string) {
	s.sortBy, s.sortOrder = by, order
}

// SetPage sets limit and offset for the next submission; nil leaves the server default
func (s *Session) SetPage(limit, offset *int) {
	s.limit, s.offset = limit, offset
}

// Reset replaces the tree with an empty AND root
func (s *Session) Reset() {
	s.root = emptyRoot()
	s.mutated()
}

// Submit cancels any pending preview and runs the search for the current tree.
// The session returns to Idle whatever the outcome.
func (s *Session) Submit(ctx context.Context) (*models.SearchResponse, error) {
	if s.search == nil {
		return nil, fmt.Errorf("no search port configured")
	}
	if s.debouncer != nil {
		s.debouncer.Cancel()
	}
	s.setState(StateSubmitting)
	defer s.setState(StateIdle)

	return s.search.Search(ctx, s.Request())
}

// Close stops previews
func (s *Session) Close() {
	if s.debouncer != nil {
		s.debouncer.Close()
	}
}

func (s *Session) mutated() {
	s.setState(StateEditing)
	if s.previewOn {
		s.schedulePreview()
	}
}

func (s *Session) schedulePreview() {
	s.setState(StatePreviewing)
	s.debouncer.Schedule(s.Request())
}

func (s *Session) onPreview(res preview.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPreview = &res
	if s.state == StatePreviewing {
		s.state = StateIdle
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) group(id string) (*models.Group, error) {
	if id == "" {
		return &s.root, nil
	}
	g := findGroup(&s.root, id)
	if g == nil {
		return nil, notFound("group", id)
	}
	return g, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", searchErrors.ErrNotFound, kind, id)
}
