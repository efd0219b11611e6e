package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"agenda/internal/auth"
	"agenda/internal/storage"
	"agenda/internal/validation"
)

type loginState struct {
	fields   []textinput.Model
	index    int
	register bool
}

func newLoginState() *loginState {
	user := textinput.New()
	user.Placeholder = "username"
	user.CharLimit = validation.MaxUsernameLen
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.CharLimit = 128
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	return &loginState{fields: []textinput.Model{user, pass}}
}

func (ls *loginState) focus(idx int) tea.Cmd {
	ls.fields[ls.index].Blur()
	ls.index = wrapIndex(idx, len(ls.fields))
	return ls.fields[ls.index].Focus()
}

func (ls *loginState) reset() {
	for i := range ls.fields {
		ls.fields[i].SetValue("")
	}
	ls.focus(0)
}

func (m Model) updateLogin(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ls := m.login
	switch key {
	case "esc":
		return m, tea.Quit
	case m.cfg.Keys.Register:
		ls.register = !ls.register
		if ls.register {
			m.setStatus("Register: pick a username and a password with letters and digits")
		} else {
			m.setStatus("Log in")
		}
		return m, nil
	case "tab", "down":
		return m, ls.focus(ls.index + 1)
	case "shift+tab", "up":
		return m, ls.focus(ls.index - 1)
	case "enter":
		if ls.index < len(ls.fields)-1 {
			return m, ls.focus(ls.index + 1)
		}
		return m.submitLogin()
	default:
		var cmd tea.Cmd
		ls.fields[ls.index], cmd = ls.fields[ls.index].Update(msg)
		return m, cmd
	}
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	ls := m.login
	username := strings.TrimSpace(ls.fields[0].Value())
	password := ls.fields[1].Value()

	if ls.register {
		if err := m.deps.Auth.Register(m.ctx, username, password); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				m.status = fmt.Sprintf("The username %q is taken", username)
				m.statusErr = true
				return m, nil
			}
			m.setError("register failed", err)
			return m, nil
		}
	}

	s, err := m.deps.Sessions.Login(m.ctx, username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			m.status = "Invalid username or password"
			m.statusErr = true
			ls.fields[1].SetValue("")
			return m, nil
		}
		m.setError("login failed", err)
		return m, nil
	}

	ls.reset()
	ls.register = false
	m.session = s
	m.banner = nil
	m.mode = modeMenu
	m.menu = 0
	m.setStatus("Welcome, %s", s.User)
	return m, waitForReminder(s)
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	if m.session != nil {
		m.deps.Sessions.Logout()
	}
	m.session = nil
	m.notes, m.tasks, m.dayTasks, m.dueDays = nil, nil, nil, nil
	m.banner = nil
	m.filter = ""
	m.mode = modeLogin
	m.setStatus("Logged out")
	return m, m.login.focus(0)
}

func (m Model) renderLogin() string {
	ls := m.login
	var b strings.Builder
	if ls.register {
		b.WriteString("Create an account\n\n")
	} else {
		b.WriteString("Log in\n\n")
	}
	labels := []string{"Username", "Password"}
	for i, f := range ls.fields {
		label := fmt.Sprintf("%-9s", labels[i])
		if i == ls.index {
			label = selectedStyle.Render(label)
		}
		b.WriteString(label + " " + f.View() + "\n")
	}
	return b.String()
}
