package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) sweep() error {
	report, err := cli.briSvc.Sweep(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("swept %d students: %d succeeded, %d failed, %d skipped\n",
		report.Total, report.Succeeded, len(report.Failures), report.Skipped)
	for _, f := range report.Failures {
		fmt.Printf("  %s failed at %s: %s\n", f.StudentID, f.Stage, f.Error)
	}
	return nil
}

func (cli *commandLine) recompute(studentID string) error {
	res, err := cli.briSvc.Recompute(context.Background(), studentID)
	if err != nil {
		return err
	}

	fmt.Printf("student %s: BRI %.2f (%s)\n", studentID, res.BRIScore, res.RiskLevel)
	for i, f := range res.ContributingFactors {
		fmt.Printf("  %d. %s\n", i+1, f)
	}
	return nil
}
