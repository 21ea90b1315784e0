/*
Package cli provides command-line utilities for the guard command.

Output Formatting:

Command results are printed as text, JSON or CSV:

	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, rules); err != nil {
		return err
	}

Text output uses the value's Text method when it has one. CSV output needs
a value that implements Tabular.

Progress Reporting:

For long-running operations such as audit exports:

	progress := cli.NewProgressReporter(os.Stderr, "records")
	progress.Start(total)
	for i := int64(1); i <= total; i++ {
		progress.Update(i)
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Exit Codes:

ExitCode maps an error returned by a command to the process exit status.
*/
package cli
