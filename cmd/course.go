package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursekit/internal/storage"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Publish and browse SCORM course packages",
}

var courseGenerateCmd = &cobra.Command{
	Use:   "generate <syllabus-name>",
	Short: "Generate course content from a syllabus and publish the package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(a)

		res, err := a.Courses.GenerateCourse(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Published %s\n%s\n", res.CourseName, res.PackageURL)
		return nil
	},
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published packages",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("search")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer closeApp(a)

		var pkgs []storage.Package
		if query != "" {
			pkgs, err = a.Courses.Search(cmd.Context(), query)
		} else {
			pkgs, err = a.Courses.List(cmd.Context())
		}
		if err != nil {
			return err
		}
		if len(pkgs) == 0 {
			fmt.Println("No packages found.")
			return nil
		}

		fmt.Printf("%-40s  %s\n", "Course", "URL")
		fmt.Println(strings.Repeat("─", 100))
		for _, p := range pkgs {
			fmt.Printf("%-40s  %s\n", truncate(p.CourseName, 40), p.URL)
		}
		return nil
	},
}

func init() {
	courseListCmd.Flags().StringP("search", "s", "", "Only packages whose name contains this text")

	courseCmd.AddCommand(courseGenerateCmd)
	courseCmd.AddCommand(courseListCmd)
}
