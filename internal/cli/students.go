package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/raphaelgruber/sayar/internal/service"
)

var (
	studentName   string
	studentRoll   string
	studentGrade  string
	studentParent string
	studentNotes  string
	deleteAll     bool
	deleteYes     bool
)

var studentsCmd = &cobra.Command{
	Use:     "students",
	Aliases: []string{"student"},
	Short:   "Manage student records",
}

var studentsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a student",
	Long: `Add a student record.

Examples:
  sayar students add --name "Aung Aung" --roll 12 --grade 5
  sayar students add --name "Su Su" --roll 3 --grade 5 --parent 09-123456`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := models.NewStudent(studentName, studentRoll, studentGrade)
		if studentParent != "" {
			st.ParentContact = &studentParent
		}
		if studentNotes != "" {
			st.Notes = &studentNotes
		}
		if err := application.Store.PutStudent(cmd.Context(), st); err != nil {
			return err
		}
		printSuccess("Added %s (%s)", st.Name, st.ID)
		return nil
	},
}

var studentsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List students",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			students []models.Student
			err      error
		)
		if studentGrade != "" {
			students, err = application.Store.ListStudentsByGrade(cmd.Context(), studentGrade)
		} else {
			students, err = application.Store.ListStudents(cmd.Context())
		}
		if err != nil {
			return err
		}
		printStudents(students)
		return nil
	},
}

var studentsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find students by name or roll number",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		students, err := application.Store.SearchStudents(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		printStudents(students)
		return nil
	},
}

var studentsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a student",
	Long: `Change fields of a student. Only the flags given are updated; pass an
empty --parent or --notes to clear them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := application.Store.GetStudent(ctx, args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("name") {
			st.Name = studentName
		}
		if flags.Changed("roll") {
			st.RollNumber = studentRoll
		}
		if flags.Changed("grade") {
			st.Grade = studentGrade
		}
		if flags.Changed("parent") {
			st.ParentContact = optional(studentParent)
		}
		if flags.Changed("notes") {
			st.Notes = optional(studentNotes)
		}

		if err := application.Store.UpdateStudent(ctx, st); err != nil {
			return err
		}
		printSuccess("Updated %s", st.Name)
		return nil
	},
}

var studentsDeleteCmd = &cobra.Command{
	Use:     "delete [id]",
	Aliases: []string{"rm"},
	Short:   "Delete a student, or all students with --all",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if deleteAll {
			if !deleteYes {
				return fmt.Errorf("refusing to delete all students without --yes")
			}
			n, err := application.Store.DeleteAllStudents(ctx)
			if err != nil {
				return err
			}
			printSuccess("Deleted %d students", n)
			return nil
		}
		if len(args) == 0 {
			return fmt.Errorf("student id required (or --all)")
		}
		if err := application.Store.DeleteStudent(ctx, args[0]); err != nil {
			return err
		}
		printSuccess("Deleted %s", args[0])
		return nil
	},
}

var studentsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upload all students to the Drive students folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireDrive(); err != nil {
			return err
		}
		var file models.DriveFile
		err := runTask(cmd.Context(), "Uploading students...", 0, func(ctx context.Context, _ func(string)) error {
			var err error
			file, err = application.Export.ExportStudents(ctx)
			return err
		})
		if err != nil {
			return err
		}
		printSuccess("Uploaded %s (%s)", service.StudentsExportFile, file.ID)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{studentsAddCmd, studentsUpdateCmd} {
		c.Flags().StringVar(&studentName, "name", "", "student name")
		c.Flags().StringVar(&studentRoll, "roll", "", "roll number")
		c.Flags().StringVar(&studentGrade, "grade", "", "grade")
		c.Flags().StringVar(&studentParent, "parent", "", "parent contact")
		c.Flags().StringVar(&studentNotes, "notes", "", "notes")
	}
	_ = studentsAddCmd.MarkFlagRequired("name")

	studentsListCmd.Flags().StringVar(&studentGrade, "grade", "", "only list this grade")

	studentsDeleteCmd.Flags().BoolVar(&deleteAll, "all", false, "delete every student")
	studentsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "confirm --all")

	studentsCmd.AddCommand(studentsAddCmd)
	studentsCmd.AddCommand(studentsListCmd)
	studentsCmd.AddCommand(studentsSearchCmd)
	studentsCmd.AddCommand(studentsUpdateCmd)
	studentsCmd.AddCommand(studentsDeleteCmd)
	studentsCmd.AddCommand(studentsExportCmd)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func printStudents(students []models.Student) {
	if len(students) == 0 {
		printHint("No students")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLL\tGRADE\tPARENT")
	for _, st := range students {
		parent := ""
		if st.ParentContact != nil {
			parent = *st.ParentContact
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", st.ID, st.Name, st.RollNumber, st.Grade, parent)
	}
	_ = w.Flush()
}
