// Command formctl drives the contact form headlessly: it loads the page,
// fills fields, attaches files from disk, then validates or submits and
// prints what a visitor would have seen.
package main

import (
	"context"
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/avirbig/cohen-services-hub/internal/model"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "formctl",
		Usage: "fill, validate and submit the contact form from the terminal",
		// Field values may contain commas.
		DisableSliceFlagSeparator: true,
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "fill the form and report field errors without submitting",
				Flags:  formFlags(),
				Action: validateAction,
			},
			{
				Name:   "submit",
				Usage:  "fill the form and submit it to the configured intake",
				Flags:  formFlags(),
				Action: submitAction,
			},
		},
	}
}

func formFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      "page",
			Usage:     "HTML page holding the form (defaults to the built-in contact page)",
			TakesFile: true,
		},
		&cli.StringSliceFlag{
			Name:    "field",
			Aliases: []string{"f"},
			Usage:   "field value as name=value, repeatable",
		},
		&cli.StringSliceFlag{
			Name:      "attach",
			Aliases:   []string{"a"},
			Usage:     "file to attach, repeatable",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  "profile",
			Usage: "configuration profile (single or multi), overrides FORM_PROFILE",
		},
		&cli.StringFlag{
			Name:  "lang",
			Usage: "message language, overrides FORM_LOCALE",
		},
		&cli.StringFlag{
			Name:  "location",
			Usage: "page URL, e.g. one carrying ?success=true after a redirect",
		},
		&cli.StringFlag{
			Name:      "out",
			Usage:     "write the resulting page HTML to this file",
			TakesFile: true,
		},
	}
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.fill(ctx); err != nil {
		return err
	}

	states, err := s.validate()
	if err != nil {
		return err
	}
	rep := newReporter(cmd.Root().Writer)
	rep.fieldStates(states)

	if err := s.writePage(); err != nil {
		return err
	}
	for _, fs := range states {
		if !fs.Valid {
			return errInvalidForm
		}
	}
	return nil
}

func submitAction(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.fill(ctx); err != nil {
		return err
	}

	res, err := s.submit(ctx)
	if err != nil {
		return err
	}
	rep := newReporter(cmd.Root().Writer)
	rep.fieldStates(res.states)
	rep.banner(res)

	if err := s.writePage(); err != nil {
		return err
	}
	if res.outcome.Kind != model.OutcomeSuccess {
		return errNotSubmitted
	}
	return nil
}
