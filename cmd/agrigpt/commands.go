package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/alumnx-ai-labs/agrigpt-frontend/gateway"
	"github.com/alumnx-ai-labs/agrigpt-frontend/gateway/rag"
	"github.com/alumnx-ai-labs/agrigpt-frontend/store"
)

func addAccountCommands(root *cobra.Command) {
	var phone, name string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Save the phone number used to identify you",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.manager.Login(cmd.Context(), store.Identity{Phone: phone, Name: name}); err != nil {
				return err
			}
			fmt.Printf("Signed in as %s\n", strings.TrimSpace(phone))
			return nil
		},
	}
	loginCmd.Flags().StringVarP(&phone, "phone", "p", "", "Phone number")
	loginCmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	_ = loginCmd.MarkFlagRequired("phone")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved phone number",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.manager.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}

	root.AddCommand(loginCmd, logoutCmd)
}

func addSessionCommands(root *cobra.Command) {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Saved chat management commands",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved chats, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			infos := a.manager.History()
			if len(infos) == 0 {
				fmt.Println("No saved chats yet.")
				return nil
			}

			headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
			cellStyle := lipgloss.NewStyle().Padding(0, 1)
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				Headers("ID", "TITLE", "MESSAGES", "LAST ACTIVITY").
				StyleFunc(func(row, _ int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return cellStyle
				})
			for _, info := range infos {
				t.Row(info.ID, info.Title, fmt.Sprint(info.Messages), info.LastActivity.Local().Format("2006-01-02 15:04"))
			}
			fmt.Println(t.Render())
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			id := args[0]
			var found bool
			for _, info := range a.manager.History() {
				if info.ID == id {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("no saved chat with id %s", id)
			}
			if err := a.manager.DeleteSession(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", id)
			return nil
		},
	}

	sessionsCmd.AddCommand(listCmd, deleteCmd)
	root.AddCommand(sessionsCmd)
}

func addAdminCommands(root *cobra.Command) {
	var category string

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is up",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.client.Health(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(status)
		},
	}

	ingestCmd := &cobra.Command{
		Use:   "ingest <file.pdf>",
		Short: "Upload a PDF into the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := rag.ParseCategory(category)
			if err != nil {
				return err
			}
			doc, err := gateway.LoadAttachment(args[0])
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Printf("Uploading %s to %s...\n", doc.Name, cat.Label())
			resp, err := a.client.Ingest(cmd.Context(), cat, doc)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	ingestCmd.Flags().StringVarP(&category, "category", "c", string(rag.CategoryCitrus), "Knowledge base (citrus, schemes)")

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear-knowledge-base",
		Short: "Remove every document from the knowledge base",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the knowledge base without --yes")
			}
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.client.ClearKnowledgeBase(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm clearing")

	root.AddCommand(healthCmd, ingestCmd, clearCmd)
}

func addConsultCommands(root *cobra.Command) {
	var (
		category  string
		sessionID string
		searchImg string
		searchTxt string
		askImg    string
		topK      int
	)

	consultCmd := &cobra.Command{
		Use:   "consult [question]",
		Short: "Ask the citrus or government schemes consultant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := rag.ParseCategory(category)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			var turns []rag.Turn
			if sessionID != "" {
				if !a.manager.LoadSession(cmd.Context(), sessionID) {
					return fmt.Errorf("no saved chat with id %s", sessionID)
				}
				turns = rag.TurnsFrom(a.manager.Active().Messages)
			}

			resp, err := a.client.Consult(cmd.Context(), cat, strings.Join(args, " "), turns)
			if err != nil {
				return err
			}
			if answer := rag.AnswerText(resp); answer != "" {
				fmt.Println(answer)
				return nil
			}
			return printJSON(resp)
		},
	}
	consultCmd.Flags().StringVarP(&category, "category", "c", string(rag.CategoryCitrus), "Consultant (citrus, schemes)")
	consultCmd.Flags().StringVarP(&sessionID, "session", "s", "", "Send a saved chat as conversation history")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Find reference images by description or by a similar image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (searchTxt == "") == (searchImg == "") {
				return fmt.Errorf("give exactly one of --text or --image")
			}
			var img gateway.Attachment
			if searchImg != "" {
				var err error
				if img, err = gateway.LoadImage(searchImg); err != nil {
					return err
				}
			}

			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			var resp map[string]any
			if searchImg != "" {
				resp, err = a.client.SearchImagesByImage(cmd.Context(), img, topK)
			} else {
				resp, err = a.client.SearchImagesByText(cmd.Context(), searchTxt, topK)
			}
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	searchCmd.Flags().StringVarP(&searchTxt, "text", "t", "", "Describe what the images should show")
	searchCmd.Flags().StringVarP(&searchImg, "image", "i", "", "Find images similar to this one")
	searchCmd.Flags().IntVarP(&topK, "top-k", "k", gateway.MaxResultLimit, "Number of matches (1-5)")

	askCmd := &cobra.Command{
		Use:   "ask-image [question]",
		Short: "Ask a free-form question about an image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := gateway.LoadImage(askImg)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.client.AskWithImage(cmd.Context(), img, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if answer := rag.AnswerText(resp); answer != "" {
				fmt.Println(answer)
				return nil
			}
			return printJSON(resp)
		},
	}
	askCmd.Flags().StringVarP(&askImg, "image", "i", "", "Image to ask about")
	_ = askCmd.MarkFlagRequired("image")

	root.AddCommand(consultCmd, searchCmd, askCmd)
}

func addConfigCommands(root *cobra.Command) {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := configManager.Load()
			if err != nil {
				return err
			}
			if cfg.Store.Redis.Password != "" {
				cfg.Store.Redis.Password = "********"
			}
			fmt.Printf("# %s\n", configManager.Path())
			return printJSON(cfg)
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value, e.g. server.url",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := configManager.Set(args[0], args[1]); err != nil {
				return err
			}
			if _, err := configManager.Load(); err != nil {
				return fmt.Errorf("saved, but the config is now invalid: %w", err)
			}
			fmt.Printf("%s = %s\n", args[0], args[1])
			return nil
		},
	}

	configCmd.AddCommand(showCmd, setCmd)
	root.AddCommand(configCmd)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
