package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mkrupp/campuslink/internal/domain"
	infractx "github.com/mkrupp/campuslink/internal/infra/context"
	"github.com/mkrupp/campuslink/internal/svc/authsvc"
	"github.com/mkrupp/campuslink/internal/svc/bulletinsvc"
	"github.com/mkrupp/campuslink/internal/svc/campus"
	"github.com/mkrupp/campuslink/internal/svc/tasksvc"
)

var (
	errUsage         = errors.New("usage")
	errLoginRejected = errors.New("login rejected")
)

type cli struct {
	campus  *campus.Campus
	out     *printer
	session sessionFile
	dbPath  string
}

type userView struct {
	ID       int64  `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
}

type sessionView struct {
	UserID    int64     `json:"userId" yaml:"userId"`
	Username  string    `json:"username" yaml:"username"`
	IssuedAt  time.Time `json:"issuedAt" yaml:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt" yaml:"expiresAt"`
}

type changeView struct {
	ID    int64 `json:"id" yaml:"id"`
	Found bool  `json:"found" yaml:"found"`
}

func usage(text string) error {
	return fmt.Errorf("%w: campusctl %s", errUsage, text)
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	cmd, args := args[0], args[1:]

	switch cmd {
	case "init":
		return c.cmdInit(ctx)
	case "register":
		return c.cmdRegister(ctx, args)
	case "login":
		return c.cmdLogin(ctx, args)
	case "logout":
		return c.cmdLogout()
	case "whoami":
		return c.cmdWhoami(ctx)
	case "task", "tasks":
		return c.cmdTask(ctx, args)
	case "post", "posts":
		return c.cmdPost(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// parseArgs parses flags that may appear before or after positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string

	for {
		if err := fs.Parse(args); err != nil {
			return nil, errors.Join(errUsage, err)
		}

		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}

		positional = append(positional, args[0])
		args = args[1:]
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	return fs
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errUsage, s)
	}

	return id, nil
}

// authenticate resolves the stored session and attaches its user to the context.
func (c *cli) authenticate(ctx context.Context) (context.Context, infractx.SessionUser, error) {
	token, err := c.session.load()
	if err != nil {
		return ctx, infractx.SessionUser{}, fmt.Errorf("not logged in, run campusctl login: %w", err)
	}

	claims, err := c.campus.Auth.ValidateToken(ctx, token)
	if err != nil {
		return ctx, infractx.SessionUser{}, fmt.Errorf("session expired, run campusctl login: %w", err)
	}

	user := infractx.SessionUser{ID: claims.UserID, Username: claims.Username}

	return infractx.WithSessionUser(ctx, user), user, nil
}

func (c *cli) cmdInit(ctx context.Context) error {
	// Open already applied the schema; this only reports where the store lives.
	if c.out.structured() {
		return c.out.emit(map[string]any{"path": c.dbPath, "active": c.campus.Active()})
	}

	c.out.success("Store ready: %s", c.dbPath)

	return nil
}

func (c *cli) credentials(name string, args []string) (string, string, error) {
	fs := newFlagSet(name)
	password := fs.String("password", os.Getenv("CAMPUSLINK_PASSWORD"), "account password")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return "", "", err
	}

	if len(positional) != 1 {
		return "", "", usage(name + " <username> [-password pw]")
	}

	if err := authsvc.ValidateCredentials(positional[0], *password); err != nil {
		return "", "", err
	}

	return positional[0], *password, nil
}

func (c *cli) cmdRegister(ctx context.Context, args []string) error {
	username, password, err := c.credentials("register", args)
	if err != nil {
		return err
	}

	if err := c.campus.Auth.RegisterUser(ctx, username, password); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return fmt.Errorf("username %q is taken: %w", username, domain.ErrUserAlreadyExists)
		}

		return fmt.Errorf("register: %w", err)
	}

	id, err := c.campus.Auth.GetUserID(ctx, username)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	if c.out.structured() {
		return c.out.emit(userView{ID: id, Username: username})
	}

	c.out.success("Registered %s (id %d)", username, id)

	return nil
}

func (c *cli) cmdLogin(ctx context.Context, args []string) error {
	username, password, err := c.credentials("login", args)
	if err != nil {
		return err
	}

	token, result, err := c.campus.Auth.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	switch result {
	case domain.AuthSuccess:
	case domain.AuthUserNotFound:
		return fmt.Errorf("%w: no account named %q", errLoginRejected, username)
	default:
		return fmt.Errorf("%w: %s", errLoginRejected, result)
	}

	if err := c.session.save(token); err != nil {
		return err
	}

	return c.showSession(ctx, token)
}

func (c *cli) cmdLogout() error {
	found, err := c.session.clear()
	if err != nil {
		return err
	}

	if c.out.structured() {
		return c.out.emit(map[string]bool{"loggedOut": found})
	}

	if !found {
		c.out.notice("Not logged in")

		return nil
	}

	c.out.success("Logged out")

	return nil
}

func (c *cli) cmdWhoami(ctx context.Context) error {
	token, err := c.session.load()
	if err != nil {
		return fmt.Errorf("not logged in, run campusctl login: %w", err)
	}

	return c.showSession(ctx, token)
}

func (c *cli) showSession(ctx context.Context, token string) error {
	claims, err := c.campus.Auth.ValidateToken(ctx, token)
	if err != nil {
		return fmt.Errorf("session expired, run campusctl login: %w", err)
	}

	view := sessionView{
		UserID:    claims.UserID,
		Username:  claims.Username,
		IssuedAt:  time.Unix(claims.IssuedAt, 0),
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}

	if c.out.structured() {
		return c.out.emit(view)
	}

	c.out.heading("Session")
	c.out.line("  User:      %s (id %d)", view.Username, view.UserID)
	c.out.line("  Issued:    %s", view.IssuedAt.Format(time.DateTime))
	c.out.line("  Expires:   %s", view.ExpiresAt.Format(time.DateTime))
	c.out.line("")

	return nil
}

func (c *cli) cmdTask(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.cmdTaskList(ctx)
	}

	switch args[0] {
	case "add":
		return c.cmdTaskAdd(ctx, args[1:])
	case "list", "ls":
		return c.cmdTaskList(ctx)
	case "done":
		return c.cmdTaskChange(ctx, args[1:], "done", c.campus.TaskSvc.CompleteTask)
	case "rm", "delete":
		return c.cmdTaskChange(ctx, args[1:], "rm", c.campus.TaskSvc.DeleteTask)
	default:
		return fmt.Errorf("%w: unknown task command %q", errUsage, args[0])
	}
}

func (c *cli) cmdTaskAdd(ctx context.Context, args []string) error {
	fs := newFlagSet("task add")
	description := fs.String("desc", "", "task description")
	dueDate := fs.String("due", "", "due date (YYYY-MM-DD)")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	if len(positional) == 0 {
		return usage("task add <name> [-desc d] [-due YYYY-MM-DD]")
	}

	if *dueDate != "" {
		if err := tasksvc.ValidateDueDate(*dueDate); err != nil {
			return err
		}
	}

	ctx, user, err := c.authenticate(ctx)
	if err != nil {
		return err
	}

	created, err := c.campus.TaskSvc.AddTask(ctx, user.ID, strings.Join(positional, " "), *description, *dueDate)
	if err != nil {
		return err
	}

	if c.out.structured() {
		return c.out.emit(created)
	}

	c.out.success("Added task %d: %s", created.ID, created.Name)

	return nil
}

func (c *cli) cmdTaskList(ctx context.Context) error {
	ctx, user, err := c.authenticate(ctx)
	if err != nil {
		return err
	}

	tasks, err := c.campus.TaskSvc.ListTasks(ctx, user.ID)
	if err != nil {
		return err
	}

	if c.out.structured() {
		if tasks == nil {
			tasks = []domain.Task{}
		}

		return c.out.emit(tasks)
	}

	c.out.heading("Tasks of " + user.Username)

	if len(tasks) == 0 {
		c.out.line("  (no tasks)")
		c.out.line("")

		return nil
	}

	w := c.out.table()
	fmt.Fprintln(w, "  ID\tDONE\tDUE\tNAME\tDESCRIPTION")
	fmt.Fprintln(w, "  --\t----\t---\t----\t-----------")

	for _, t := range tasks {
		done := " "
		if t.IsCompleted {
			done = "✓"
		}

		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n", t.ID, done, t.DueDate, truncate(t.Name, 32), truncate(t.Description, 40))
	}

	_ = w.Flush()
	c.out.line("")

	return nil
}

// cmdTaskChange applies fn to one of the caller's own tasks.
func (c *cli) cmdTaskChange(
	ctx context.Context,
	args []string,
	name string,
	fn func(context.Context, int64) (bool, error),
) error {
	if len(args) != 1 {
		return usage("task " + name + " <id>")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	ctx, user, err := c.authenticate(ctx)
	if err != nil {
		return err
	}

	found := true

	existing, err := c.campus.Tasks.GetTask(ctx, id)
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		found = false
	case err != nil:
		return err
	case existing.OwnerID != user.ID:
		return fmt.Errorf("task %d belongs to someone else: %w", id, domain.ErrUnauthorized)
	}

	if found {
		if found, err = fn(ctx, id); err != nil {
			return err
		}
	}

	if c.out.structured() {
		return c.out.emit(changeView{ID: id, Found: found})
	}

	if !found {
		c.out.notice("No task with id %d", id)

		return nil
	}

	if name == "done" {
		c.out.success("Completed task %d", id)
	} else {
		c.out.success("Deleted task %d", id)
	}

	return nil
}

func (c *cli) cmdPost(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.cmdPostList(ctx)
	}

	switch args[0] {
	case "add":
		return c.cmdPostAdd(ctx, args[1:])
	case "list", "ls":
		return c.cmdPostList(ctx)
	case "rm", "delete":
		return c.cmdPostDelete(ctx, args[1:])
	default:
		return fmt.Errorf("%w: unknown post command %q", errUsage, args[0])
	}
}

func (c *cli) cmdPostAdd(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("post add <title> <content>")
	}

	title, content := args[0], strings.Join(args[1:], " ")
	if err := bulletinsvc.ValidatePost(title, content); err != nil {
		return err
	}

	ctx, user, err := c.authenticate(ctx)
	if err != nil {
		return err
	}

	created, err := c.campus.Bulletin.AddPost(ctx, user.ID, title, content)
	if err != nil {
		return err
	}

	if c.out.structured() {
		return c.out.emit(created)
	}

	c.out.success("Posted %d: %s", created.ID, created.Title)

	return nil
}

func (c *cli) cmdPostList(ctx context.Context) error {
	posts, err := c.campus.Bulletin.ListPosts(ctx)
	if err != nil {
		return err
	}

	if c.out.structured() {
		if posts == nil {
			posts = []domain.Post{}
		}

		return c.out.emit(posts)
	}

	c.out.heading("Bulletin Board")

	if len(posts) == 0 {
		c.out.line("  (no posts)")
		c.out.line("")

		return nil
	}

	for _, p := range posts {
		author := p.AuthorUsername
		if author == "" {
			author = fmt.Sprintf("user %d", p.AuthorID)
		}

		c.out.line("  #%d  %s", p.ID, p.Title)
		c.out.line("      by %s, %s", author, p.Timestamp.Format("Jan 02 15:04"))
		c.out.line("      %s", p.Content)
		c.out.line("")
	}

	return nil
}

func (c *cli) cmdPostDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("post rm <id>")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	ctx, user, err := c.authenticate(ctx)
	if err != nil {
		return err
	}

	if err := c.campus.Bulletin.DeletePost(ctx, user.ID, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			return fmt.Errorf("post %d was written by someone else: %w", id, domain.ErrUnauthorized)
		case errors.Is(err, domain.ErrPostNotFound):
			return fmt.Errorf("no post with id %d: %w", id, domain.ErrPostNotFound)
		default:
			return err
		}
	}

	if c.out.structured() {
		return c.out.emit(changeView{ID: id, Found: true})
	}

	c.out.success("Deleted post %d", id)

	return nil
}
