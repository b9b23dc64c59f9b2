// Package shell is an interactive front end for the tree editor. Each line
// is one command; commands map one to one onto editor operations.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/editor"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
)

// ErrQuit is returned by Exec for exit and quit
var ErrQuit = errors.New("quit")

type command struct {
	name  string
	args  string
	short string
	run   func(ctx context.Context, args []string) (string, error)
}

// Shell binds command lines to an editor session
type Shell struct {
	session  *editor.Session
	out      io.Writer
	commands map[string]*command
	list     []*command
}

// New creates a shell over session, writing output to out
func New(session *editor.Session, out io.Writer) *Shell {
	sh := &Shell{session: session, out: out, commands: map[string]*command{}}
	sh.register()
	return sh
}

func (sh *Shell) add(cmd *command) {
	sh.list = append(sh.list, cmd)
	sh.commands[cmd.name] = cmd
}

func (sh *Shell) register() {
	sh.add(&command{name: "add", args: "[group]", short: "append a condition", run: sh.addCondition})
	sh.add(&command{name: "group", args: "[parent]", short: "append a nested group", run: sh.addGroup})
	sh.add(&command{name: "rm", args: "<id>", short: "remove a condition or group", run: sh.remove})
	sh.add(&command{name: "toggle", args: "[group]", short: "flip a group between AND and OR", run: sh.toggle})
	sh.add(&command{name: "field", args: "<condition> <field>", short: "change the field of a condition", run: sh.field})
	sh.add(&command{name: "op", args: "<condition> <operator>", short: "change the operator of a condition", run: sh.operator})
	sh.add(&command{name: "value", args: "<condition> <text...>", short: "set a single value", run: sh.value})
	sh.add(&command{name: "list", args: "<condition> <item...>", short: "set a list value", run: sh.listValue})
	sh.add(&command{name: "sort", args: "<field> [asc|desc]", short: "set the sort key", run: sh.sort})
	sh.add(&command{name: "page", args: "<limit> [offset]", short: "set paging", run: sh.page})
	sh.add(&command{name: "preview", args: "on|off", short: "toggle live counts", run: sh.preview})
	sh.add(&command{name: "show", short: "print the tree", run: sh.show})
	sh.add(&command{name: "search", short: "run the search", run: sh.search})
	sh.add(&command{name: "reset", short: "clear the tree", run: sh.reset})
}

// Help lists the commands
func (sh *Shell) Help() string {
	var b strings.Builder
	for _, cmd := range sh.list {
		fmt.Fprintf(&b, "%-8s %-24s %s\n", cmd.name, cmd.args, cmd.short)
	}
	b.WriteString("help, exit\n")
	return b.String()
}

// Exec runs one command line and writes its output
func (sh *Shell) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "exit", "quit":
		return ErrQuit
	case "help", "-h", "--help":
		_, err := io.WriteString(sh.out, sh.Help())
		return err
	}
	cmd, ok := sh.commands[fields[0]]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}
	msg, err := cmd.run(ctx, fields[1:])
	if err != nil {
		return err
	}
	if msg != "" {
		_, err = fmt.Fprintln(sh.out, msg)
	}
	return err
}

// Run reads lines from the terminal until exit or EOF
func (sh *Shell) Run(ctx context.Context, prompt string) error {
	l := liner.NewLiner()
	defer l.Close()
	l.SetCtrlCAborts(true)
	l.SetCompleter(sh.complete)

	for {
		line, err := l.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		l.AppendHistory(line)

		err = sh.Exec(ctx, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(sh.out, "ERROR: %v\n", err)
		}
	}
}

func (sh *Shell) complete(line string) []string {
	var out []string
	for name := range sh.commands {
		if strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func optional(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func need(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func (sh *Shell) addCondition(_ context.Context, args []string) (string, error) {
	return sh.session.AddCondition(optional(args))
}

func (sh *Shell) addGroup(_ context.Context, args []string) (string, error) {
	return sh.session.AddGroup(optional(args))
}

func (sh *Shell) remove(_ context.Context, args []string) (string, error) {
	if err := need(args, 1, "rm <id>"); err != nil {
		return "", err
	}
	id := args[0]
	if strings.HasPrefix(id, "g") || id == models.RootGroupID {
		return "", sh.session.RemoveGroup(id)
	}
	return "", sh.session.RemoveCondition(id)
}

func (sh *Shell) toggle(_ context.Context, args []string) (string, error) {
	return "", sh.session.ToggleOperator(optional(args))
}

func (sh *Shell) field(_ context.Context, args []string) (string, error) {
	if err := need(args, 2, "field <condition> <field>"); err != nil {
		return "", err
	}
	return "", sh.session.SetField(args[0], args[1])
}

func (sh *Shell) operator(_ context.Context, args []string) (string, error) {
	if err := need(args, 2, "op <condition> <operator>"); err != nil {
		return "", err
	}
	return "", sh.session.SetOperator(args[0], args[1])
}

func (sh *Shell) value(_ context.Context, args []string) (string, error) {
	if err := need(args, 1, "value <condition> <text...>"); err != nil {
		return "", err
	}
	return "", sh.session.SetValue(args[0], models.StringValue(strings.Join(args[1:], " ")))
}

func (sh *Shell) listValue(_ context.Context, args []string) (string, error) {
	if err := need(args, 1, "list <condition> <item...>"); err != nil {
		return "", err
	}
	return "", sh.session.SetValue(args[0], models.ListValue(args[1:]...))
}

func (sh *Shell) sort(_ context.Context, args []string) (string, error) {
	if err := need(args, 1, "sort <field> [asc|desc]"); err != nil {
		return "", err
	}
	sh.session.SetSort(args[0], optional(args[1:]))
	return "", nil
}

func (sh *Shell) page(_ context.Context, args []string) (string, error) {
	if err := need(args, 1, "page <limit> [offset]"); err != nil {
		return "", err
	}
	limit, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("limit: %w", err)
	}
	var offset *int
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("offset: %w", err)
		}
		offset = &n
	}
	sh.session.SetPage(&limit, offset)
	return "", nil
}

func (sh *Shell) preview(_ context.Context, args []string) (string, error) {
	switch optional(args) {
	case "on":
		return "", sh.session.SetPreview(true)
	case "off":
		return "", sh.session.SetPreview(false)
	}
	return "", fmt.Errorf("usage: preview on|off")
}

func (sh *Shell) show(_ context.Context, _ []string) (string, error) {
	var b strings.Builder
	writeGroup(&b, sh.session.Tree(), 0)
	fmt.Fprintf(&b, "state: %s", sh.session.State())
	if sh.session.PreviewEnabled() {
		if res, ok := sh.session.LastPreview(); ok {
			if res.Err != nil {
				fmt.Fprintf(&b, ", preview failed: %v", res.Err)
			} else {
				fmt.Fprintf(&b, ", preview: %d matching", res.Total)
			}
		}
	}
	return b.String(), nil
}

func writeGroup(b *strings.Builder, g models.Group, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s [%s]\n", indent, g.ID, g.Operator)
	for _, c := range g.Conditions {
		fmt.Fprintf(b, "%s  %s: %s %s %s\n", indent, c.ID, c.Field, c.Operator, c.Value)
	}
	for _, child := range g.Groups {
		writeGroup(b, child, depth+1)
	}
}

func (sh *Shell) search(ctx context.Context, _ []string) (string, error) {
	resp, err := sh.session.Submit(ctx)
	if err != nil {
		return "", err
	}
	return RenderResults(resp), nil
}

func (sh *Shell) reset(_ context.Context, _ []string) (string, error) {
	sh.session.Reset()
	return "", nil
}

// RenderResults formats a result page as a table with a summary line
func RenderResults(resp *models.SearchResponse) string {
	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"title", "category", "author", "tags", "updated"})
	table.SetAutoFormatHeaders(false)
	for _, r := range resp.Results {
		table.Append([]string{r.Title, r.Category, r.Author, strings.Join(r.Tags, ","), r.UpdatedAt})
	}
	table.Render()

	m := resp.Metadata
	fmt.Fprintf(&b, "%d of %d (limit %d, offset %d, more: %t)", len(resp.Results), resp.Total, m.Limit, m.Offset, m.HasMore)
	return b.String()
}
