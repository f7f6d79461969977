package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/redmonkez12/users-api/internal/user"
)

// NewUser is the input collected for the create-user command.
type NewUser struct {
	Name     string
	Email    string
	Password string
}

// Normalize trims surrounding whitespace from name and e-mail.
func (n *NewUser) Normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Email = strings.TrimSpace(n.Email)
}

// Validate applies the same rules as POST /users.
func (n *NewUser) Validate() error {
	if err := requireName(n.Name); err != nil {
		return err
	}
	if err := checkEmail(n.Email); err != nil {
		return err
	}
	return requirePassword(n.Password)
}

// Complete reports whether every field was supplied.
func (n *NewUser) Complete() bool {
	return n.Name != "" && n.Email != "" && n.Password != ""
}

// RunCreateUserForm prompts for any field not already set on n.
func RunCreateUserForm(n *NewUser) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Ada Lovelace").
				Value(&n.Name).
				Validate(requireName),

			huh.NewInput().
				Title("E-mail").
				Placeholder("ada@example.com").
				Value(&n.Email).
				Validate(checkEmail),

			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&n.Password).
				Validate(requirePassword),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return err
	}

	n.Normalize()
	return nil
}

func requireName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("name is required")
	}
	return nil
}

func checkEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("e-mail is required")
	}
	if !user.ValidEmail(s) {
		return fmt.Errorf("invalid e-mail format: %q", s)
	}
	return nil
}

func requirePassword(s string) error {
	if s == "" {
		return errors.New("password is required")
	}
	return nil
}

// PrintUserCreated prints the stored user.
func PrintUserCreated(u *user.User) {
	fmt.Println(successStyle.Render("User created successfully!"))
	fmt.Println()
	fmt.Printf("  %s %d\n", labelStyle.Render("ID"), u.ID)
	fmt.Printf("  %s %s\n", labelStyle.Render("Name"), u.Name)
	fmt.Printf("  %s %s\n", labelStyle.Render("E-mail"), u.Email)
	fmt.Println()
	fmt.Println(hintStyle.Render("  Log in with POST /login to obtain a bearer token."))
	fmt.Println()
}

// PrintTitle prints a section heading.
func PrintTitle(title string) {
	fmt.Println(titleStyle.Render(title))
}

// PrintSuccess prints a one-line success message.
func PrintSuccess(msg string) {
	fmt.Println(successStyle.Render(msg))
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Println(errorStyle.Render("Error: " + msg))
}
