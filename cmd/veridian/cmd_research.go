package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/config"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/research"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Researcher access commands",
}

var researchLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange the research passcode for an access token",
	Long: `Prompts for the research passcode and prints a signed access token.
With --hash, prints a bcrypt hash of the passcode for RESEARCH_PASSCODE_HASH instead.`,
	RunE: runResearchLogin,
}

var researchProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List research projects",
	RunE:  runResearchProjects,
}

func init() {
	researchLoginCmd.Flags().Bool("hash", false, "print a bcrypt hash of the passcode and exit")
	researchProjectsCmd.Flags().String("token", "", "access token from 'research login'")
	_ = researchProjectsCmd.MarkFlagRequired("token")

	researchCmd.AddCommand(researchLoginCmd, researchProjectsCmd)
	rootCmd.AddCommand(researchCmd)
}

func readPasscode(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read passcode: %w", err)
	}
	return string(b), nil
}

func runResearchLogin(cmd *cobra.Command, _ []string) error {
	hashOnly, _ := cmd.Flags().GetBool("hash")

	passcode, err := readPasscode("Access code: ")
	if err != nil {
		return err
	}

	if hashOnly {
		confirm, err := readPasscode("Confirm access code: ")
		if err != nil {
			return err
		}
		if passcode != confirm {
			return errors.New("access codes do not match")
		}
		hash, err := research.HashPasscode(passcode)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	}

	gate, err := newGate()
	if err != nil {
		return err
	}
	token, expiresAt, err := login(gate, passcode)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}

var errInvalidAccessCode = errors.New("invalid access code")

func login(gate *research.Gate, passcode string) (string, time.Time, error) {
	token, expiresAt, err := gate.Login(passcode)
	if errors.Is(err, research.ErrInvalidPasscode) {
		return "", time.Time{}, errInvalidAccessCode
	}
	return token, expiresAt, err
}

func runResearchProjects(cmd *cobra.Command, _ []string) error {
	token, _ := cmd.Flags().GetString("token")
	gate, err := newGate()
	if err != nil {
		return err
	}
	c, err := gate.Authorize(token)
	if err != nil {
		return err
	}
	projects, err := research.Projects(c)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), projects)
	}
	for _, p := range projects {
		fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-40s %2d collaborators  %s\n", p.Status, p.Title, p.Collaborators, p.Region)
	}
	return nil
}

func newGate() (*research.Gate, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.ResearchEnabled() {
		return nil, errors.New("research access is not configured: set RESEARCH_PASSCODE_HASH and RESEARCH_TOKEN_SECRET")
	}
	verifier, err := research.NewBcryptVerifier(cfg.ResearchPasscodeHash)
	if err != nil {
		return nil, err
	}
	issuer := research.NewIssuer(cfg.ResearchTokenSecret, cfg.ResearchTokenTTL, nil)
	return research.NewGate(verifier, issuer, observability.NewUnregisteredMetrics(), cliLogger(cfg)), nil
}
