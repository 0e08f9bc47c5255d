package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/ilmhub/ilm/core"
	"github.com/ilmhub/ilm/core/hadith"
	"github.com/ilmhub/ilm/core/job"
	"github.com/ilmhub/ilm/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sqlx.DB // nil with the memory engine
	usrRepo   user.Repository
	hadithSvc hadith.Service
	jobSvc    job.Service
	validate  *validator.Validate
	logger    core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS]                          - run a goose migration command (up, down, status, ...)")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-admin] - create or update a user, the password is prompted")
	fmt.Println("  resetpassword -username USERNAME|EMAIL          - reset user's password")
	fmt.Println("  importhadith -file PATH                         - upsert hadiths from a JSON array")
	fmt.Println("  expirejobs                                      - deactivate job postings past their deadline")
}

// promptPassword reads a password without echoing it. Empty passwords are refused.
func promptPassword(usage func()) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant every role.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	importHadithCmd := flag.NewFlagSet("importhadith", flag.ContinueOnError)
	importHadithFile := importHadithCmd.String("file", "", "Path to a JSON array of hadiths.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword(addUserCmd.Usage)
		if err != nil {
			return err
		}
		return cli.addUser(*addUserUname, *addUserEmail, pwd, *addUserAdmin)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword(resetPasswordCmd.Usage)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "importhadith":
		if err := importHadithCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importHadithFile == "" {
			importHadithCmd.Usage()
			return errHelp
		}
		return cli.importHadith(*importHadithFile)

	case "expirejobs":
		return cli.expireJobs()

	default:
		cli.printUsage()
		return errHelp
	}
}
