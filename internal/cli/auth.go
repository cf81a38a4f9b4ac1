package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forkdep/pkg/config"
	"github.com/matzehuels/forkdep/pkg/integrations/github"
	"github.com/matzehuels/forkdep/pkg/session"
)

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage GitHub authentication",
		Long: `Authenticate with GitHub so forkdep can create forks on your behalf.

The default device flow gives you a code to enter at github.com; --web
opens the browser-based authorization flow with a localhost callback.
Your session is stored in ~/.config/forkdep/sessions/`,
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authWhoamiCommand())

	return cmd
}

// authLoginCommand creates the login subcommand.
func (c *CLI) authLoginCommand() *cobra.Command {
	var web bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with GitHub",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if existing, _ := loadGitHubSession(ctx); existing != nil {
				printInfo("Already logged in as @%s", existing.User.Login)
				printDetail("Run '%s auth logout' first to re-authenticate", appName)
				return nil
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			if web {
				_, err = c.runWebLogin(ctx, cfg)
			} else {
				_, err = c.runDeviceLogin(ctx, cfg)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&web, "web", false, "use the browser authorization flow with a localhost callback")
	return cmd
}

// authLogoutCommand creates the logout subcommand.
func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored GitHub credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deleteGitHubSession(cmd.Context()); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

// authWhoamiCommand creates the whoami subcommand.
func (c *CLI) authWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently authenticated GitHub user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := loadGitHubSession(ctx)
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Verifying session...")
			spinner.Start()

			client := c.newGitHubClient(ctx, cfg, sess.AccessToken)
			user, err := client.FetchUser(ctx)
			if err != nil {
				spinner.StopWithError("Session invalid")
				return fmt.Errorf("verify session: %w", err)
			}
			spinner.Stop()

			printSuccess("GitHub Session")
			printKeyValue("Username", "@"+user.Login)
			if user.Name != "" {
				printKeyValue("Name", user.Name)
			}
			if user.Email != "" {
				printKeyValue("Email", user.Email)
			}
			printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			printKeyValue("Expires", sess.ExpiresAt.Format("Jan 2, 2006"))

			return nil
		},
	}
}

// =============================================================================
// Session Management
// =============================================================================

// loadGitHubSession loads the GitHub session from disk.
func loadGitHubSession(ctx context.Context) (*session.Session, error) {
	store, err := session.NewCLIStore()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sess, err := store.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("not logged in (run '%s auth login' first)", appName)
	}

	return sess, nil
}

func saveGitHubSession(ctx context.Context, token *github.OAuthToken, user *github.User) (*session.Session, error) {
	store, err := session.NewCLIStore()
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sess, err := session.New(token.AccessToken, user, session.DefaultTTL)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := store.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return sess, nil
}

func deleteGitHubSession(ctx context.Context) error {
	store, err := session.NewCLIStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	return store.DeleteSession(ctx)
}

func clientID(cfg *config.Config) string {
	if cfg.GitHub.ClientID != "" {
		return cfg.GitHub.ClientID
	}
	return github.DefaultClientID
}

// =============================================================================
// Device Flow Login
// =============================================================================

func (c *CLI) runDeviceLogin(ctx context.Context, cfg *config.Config) (*session.Session, error) {
	oauthClient := github.NewOAuthClient(github.OAuthConfig{ClientID: clientID(cfg)})

	loginCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	deviceResp, err := oauthClient.RequestDeviceCode(loginCtx)
	if err != nil {
		return nil, fmt.Errorf("request device code: %w", err)
	}

	printNewline()
	fmt.Println(StyleTitle.Render("GitHub Device Authorization"))
	printNewline()
	printKeyValue("Code", StyleNumber.Render(deviceResp.UserCode))
	printKeyValue("URL", StyleLink.Render(deviceResp.VerificationURI))
	printNewline()

	if err := openBrowser(deviceResp.VerificationURI); err != nil {
		printDetail("Copy the URL above and paste it in your browser")
	} else {
		printDetail("Opening browser...")
	}
	printInline("Waiting for authorization...")

	token, err := oauthClient.PollForToken(loginCtx, deviceResp.DeviceCode, deviceResp.Interval)
	if err != nil {
		fmt.Println()
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	return c.finishLogin(ctx, cfg, token)
}

// =============================================================================
// Web Flow Login
// =============================================================================

// runWebLogin runs the authorization-code flow against a localhost callback
// server. A single-use state token protects the callback against CSRF.
func (c *CLI) runWebLogin(ctx context.Context, cfg *config.Config) (*session.Session, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("start callback listener: %w", err)
	}
	defer listener.Close()

	redirectURI := fmt.Sprintf("http://%s/callback", listener.Addr())
	oauthClient := github.NewOAuthClient(github.OAuthConfig{
		ClientID:    clientID(cfg),
		RedirectURI: redirectURI,
	})

	states := session.NewMemoryStateStore()
	state, err := states.Generate(ctx, session.DefaultStateTTL)
	if err != nil {
		return nil, fmt.Errorf("generate state token: %w", err)
	}

	loginCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)

	router := chi.NewRouter()
	router.Get("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		ok, err := states.Validate(r.Context(), query.Get("state"))
		if err != nil || !ok {
			http.Error(w, "invalid state token", http.StatusBadRequest)
			results <- callback{err: session.ErrInvalidState}
			return
		}
		if errMsg := query.Get("error"); errMsg != "" {
			http.Error(w, "authorization denied", http.StatusForbidden)
			results <- callback{err: fmt.Errorf("authorization denied: %s", errMsg)}
			return
		}

		fmt.Fprintln(w, "Authorized. You can close this tab and return to the terminal.")
		results <- callback{code: query.Get("code")}
	})

	server := &http.Server{Handler: router}
	go server.Serve(listener)
	defer server.Shutdown(context.Background())

	authURL := oauthClient.AuthorizationURL(state)
	printNewline()
	fmt.Println(StyleTitle.Render("GitHub Authorization"))
	printNewline()
	printKeyValue("URL", StyleLink.Render(authURL))
	printNewline()

	if err := openBrowser(authURL); err != nil {
		printDetail("Copy the URL above and paste it in your browser")
	} else {
		printDetail("Opening browser...")
	}
	printInline("Waiting for authorization...")

	var code string
	select {
	case <-loginCtx.Done():
		fmt.Println()
		return nil, fmt.Errorf("authorization timed out: %w", loginCtx.Err())
	case result := <-results:
		if result.err != nil {
			fmt.Println()
			return nil, result.err
		}
		code = result.code
	}

	token, err := oauthClient.ExchangeCode(loginCtx, code)
	if err != nil {
		fmt.Println()
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	return c.finishLogin(ctx, cfg, token)
}

// finishLogin fetches the authenticated user and persists the session.
func (c *CLI) finishLogin(ctx context.Context, cfg *config.Config, token *github.OAuthToken) (*session.Session, error) {
	client := c.newGitHubClient(ctx, cfg, token.AccessToken)
	user, err := client.FetchUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	sess, err := saveGitHubSession(ctx, token, user)
	if err != nil {
		return nil, err
	}

	fmt.Println()
	printSuccess("Logged in as @%s", user.Login)
	return sess, nil
}

func openBrowser(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
