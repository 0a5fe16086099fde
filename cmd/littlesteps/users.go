package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/littlesteps/internal/cli"
	"github.com/at-ishikawa/littlesteps/internal/config"
	"github.com/at-ishikawa/littlesteps/internal/model"
	"github.com/at-ishikawa/littlesteps/internal/store"
)

type teacherForm struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Password        string `json:"password" validate:"required,notblank,min=4"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Icon            int    `json:"icon" validate:"min=-1,max=11"`
}

type studentForm struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	TeacherID string `json:"teacherId" validate:"required"`
	Icon      int    `json:"icon" validate:"min=-1,max=11"`
}

// trimmed drops surrounding whitespace from the names. The password is
// validated as typed and stored trimmed.
func (f teacherForm) trimmed() teacherForm {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	return f
}

func (f studentForm) trimmed() studentForm {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	return f
}

func validateForm(form any) error {
	v, err := config.NewFormValidator()
	if err != nil {
		return fmt.Errorf("config.NewFormValidator() > %w", err)
	}
	if err := v.Validate(form); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

// photoOf maps the --icon flag to a bundled avatar. -1 keeps current.
func photoOf(icon int, current string) string {
	if icon < 0 {
		return current
	}
	return model.InternalIcon(icon)
}

func addProfileFlags(flags *pflag.FlagSet, firstName, lastName *string, icon *int) {
	flags.StringVar(firstName, "first-name", "", "First name")
	flags.StringVar(lastName, "last-name", "", "Last name")
	flags.IntVar(icon, "icon", -1, fmt.Sprintf("Bundled avatar index from 0 to %d", model.InternalIconCount-1))
}

func newTeacherCommand() *cobra.Command {
	teacherCmd := &cobra.Command{
		Use:   "teacher",
		Short: "Teacher account commands",
	}
	teacherCmd.AddCommand(
		newTeacherListCommand(),
		newTeacherAddCommand(),
		newTeacherUpdateCommand(),
		newTeacherDeleteCommand(),
		newTeacherLoginCommand(),
	)
	return teacherCmd
}

func newTeacherListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List teachers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			teachers, err := s.GetTeachers(ctx)
			if err != nil {
				return fmt.Errorf("store.GetTeachers() > %w", err)
			}
			cli.NewPrinter(cmd.OutOrStdout()).PrintTeachers(teachers)
			return nil
		},
	}
}

func newTeacherAddCommand() *cobra.Command {
	var form teacherForm
	command := &cobra.Command{
		Use:   "add",
		Short: "Create a teacher account",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := form.trimmed()
			if err := validateForm(form); err != nil {
				return err
			}
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			teacher, err := s.AddTeacher(ctx, store.NewTeacher{
				FirstName: form.FirstName,
				LastName:  form.LastName,
				Photo:     photoOf(form.Icon, ""),
				Password:  strings.TrimSpace(form.Password),
			})
			if err != nil {
				return fmt.Errorf("store.AddTeacher() > %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created teacher %s (%s)\n", teacher.Name, teacher.ID)
			return nil
		},
	}
	addProfileFlags(command.Flags(), &form.FirstName, &form.LastName, &form.Icon)
	command.Flags().StringVar(&form.Password, "password", "", "Password, at least 4 characters")
	command.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "The same password again")
	return command
}

func newTeacherUpdateCommand() *cobra.Command {
	var input teacherForm
	command := &cobra.Command{
		Use:   "update <teacher-id>",
		Short: "Change a teacher's name, avatar or password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			teacher, err := s.GetTeacher(ctx, args[0])
			if err != nil {
				return fmt.Errorf("store.GetTeacher(%s) > %w", args[0], err)
			}

			flags := cmd.Flags()
			form := teacherForm{
				FirstName:       teacher.FirstName,
				LastName:        teacher.LastName,
				Password:        teacher.Password,
				ConfirmPassword: teacher.Password,
				Icon:            input.Icon,
			}
			if flags.Changed("first-name") {
				form.FirstName = input.FirstName
			}
			if flags.Changed("last-name") {
				form.LastName = input.LastName
			}
			if flags.Changed("password") {
				form.Password = input.Password
				form.ConfirmPassword = input.ConfirmPassword
			}
			form = form.trimmed()
			if err := validateForm(form); err != nil {
				return err
			}

			updated := *teacher
			updated.FirstName = form.FirstName
			updated.LastName = form.LastName
			updated.Name = model.FullName(form.FirstName, form.LastName)
			updated.Photo = photoOf(form.Icon, teacher.Photo)
			updated.Password = strings.TrimSpace(form.Password)
			if err := s.UpdateTeacher(ctx, &updated); err != nil {
				return fmt.Errorf("store.UpdateTeacher(%s) > %w", updated.ID, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated teacher %s (%s)\n", updated.Name, updated.ID)
			return nil
		},
	}
	addProfileFlags(command.Flags(), &input.FirstName, &input.LastName, &input.Icon)
	command.Flags().StringVar(&input.Password, "password", "", "New password, at least 4 characters")
	command.Flags().StringVar(&input.ConfirmPassword, "confirm-password", "", "The new password again")
	return command
}

func newTeacherDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <teacher-id>",
		Short: "Delete a teacher account. Its students are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			if err := s.DeleteTeacher(ctx, args[0]); err != nil {
				return fmt.Errorf("store.DeleteTeacher(%s) > %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted teacher %s\n", args[0])
			return nil
		},
	}
}

func newTeacherLoginCommand() *cobra.Command {
	var password string
	command := &cobra.Command{
		Use:   "login <teacher-id>",
		Short: "Sign in as a teacher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			teacher, err := s.LoginTeacher(ctx, args[0], password)
			if err != nil {
				return fmt.Errorf("store.LoginTeacher(%s) > %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", teacher.Name)
			return nil
		},
	}
	command.Flags().StringVar(&password, "password", "", "Teacher password")
	return command
}

func newStudentCommand() *cobra.Command {
	studentCmd := &cobra.Command{
		Use:   "student",
		Short: "Student commands",
	}
	studentCmd.AddCommand(
		newStudentListCommand(),
		newStudentAddCommand(),
		newStudentUpdateCommand(),
		newStudentDeleteCommand(),
		newStudentSelectCommand(),
	)
	return studentCmd
}

func newStudentListCommand() *cobra.Command {
	var teacherID string
	command := &cobra.Command{
		Use:   "list",
		Short: "List students, optionally of one teacher",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			var students []*model.Student
			if teacherID != "" {
				students, err = s.GetStudentsByTeacher(ctx, teacherID)
			} else {
				var users model.Users
				users, err = s.GetUsers(ctx)
				students = users.Students()
			}
			if err != nil {
				return fmt.Errorf("list students > %w", err)
			}
			cli.NewPrinter(cmd.OutOrStdout()).PrintStudents(students)
			return nil
		},
	}
	command.Flags().StringVar(&teacherID, "teacher", "", "Only students of this teacher")
	return command
}

func newStudentAddCommand() *cobra.Command {
	var form studentForm
	command := &cobra.Command{
		Use:   "add",
		Short: "Create a student, by default for the signed-in teacher",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			if form.TeacherID == "" {
				teacher, err := s.GetCurrentTeacher(ctx)
				if err != nil {
					return fmt.Errorf("store.GetCurrentTeacher() > %w", err)
				}
				if teacher != nil {
					form.TeacherID = teacher.ID
				}
			}
			form = form.trimmed()
			if err := validateForm(form); err != nil {
				return err
			}

			student, err := s.AddStudent(ctx, store.NewStudent{
				FirstName: form.FirstName,
				LastName:  form.LastName,
				Photo:     photoOf(form.Icon, ""),
				TeacherID: form.TeacherID,
			})
			if err != nil {
				return fmt.Errorf("store.AddStudent() > %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created student %s (%s)\n", student.Name, student.ID)
			return nil
		},
	}
	addProfileFlags(command.Flags(), &form.FirstName, &form.LastName, &form.Icon)
	command.Flags().StringVar(&form.TeacherID, "teacher", "", "Teacher id, defaults to the signed-in teacher")
	return command
}

func newStudentUpdateCommand() *cobra.Command {
	var input studentForm
	command := &cobra.Command{
		Use:   "update <student-id>",
		Short: "Change a student's name or avatar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			student, err := s.GetStudent(ctx, args[0])
			if err != nil {
				return fmt.Errorf("store.GetStudent(%s) > %w", args[0], err)
			}

			flags := cmd.Flags()
			form := studentForm{
				FirstName: student.FirstName,
				LastName:  student.LastName,
				TeacherID: student.TeacherID,
				Icon:      input.Icon,
			}
			if flags.Changed("first-name") {
				form.FirstName = input.FirstName
			}
			if flags.Changed("last-name") {
				form.LastName = input.LastName
			}
			form = form.trimmed()
			if err := validateForm(form); err != nil {
				return err
			}

			updated := *student
			updated.FirstName = form.FirstName
			updated.LastName = form.LastName
			updated.Name = model.FullName(form.FirstName, form.LastName)
			updated.Photo = photoOf(form.Icon, student.Photo)
			if err := s.UpdateStudent(ctx, &updated); err != nil {
				return fmt.Errorf("store.UpdateStudent(%s) > %w", updated.ID, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated student %s (%s)\n", updated.Name, updated.ID)
			return nil
		},
	}
	addProfileFlags(command.Flags(), &input.FirstName, &input.LastName, &input.Icon)
	return command
}

func newStudentDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <student-id>",
		Short: "Delete a student and remove it from the teacher's roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			if err := s.DeleteStudent(ctx, args[0]); err != nil {
				return fmt.Errorf("store.DeleteStudent(%s) > %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted student %s\n", args[0])
			return nil
		},
	}
}

func newStudentSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select <student-id>",
		Short: "Make a student the current user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			student, err := s.SelectStudent(ctx, args[0])
			if err != nil {
				return fmt.Errorf("store.SelectStudent(%s) > %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Now playing as %s\n", student.Name)
			return nil
		},
	}
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out the current user and teacher",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			if err := s.Logout(ctx); err != nil {
				return fmt.Errorf("store.Logout() > %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = s.Close()
			}()

			user, err := s.GetCurrentUser(ctx)
			if err != nil {
				return fmt.Errorf("store.GetCurrentUser() > %w", err)
			}
			teacher, err := s.GetCurrentTeacher(ctx)
			if err != nil {
				return fmt.Errorf("store.GetCurrentTeacher() > %w", err)
			}
			cli.NewPrinter(cmd.OutOrStdout()).PrintCurrentUser(user, teacher)
			return nil
		},
	}
}
