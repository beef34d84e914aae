package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/quiztube/internal/notification"
	"github.com/example/quiztube/pkg/models"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learners and their notification preferences",
}

var (
	userEmail  string
	userName   string
	userChatID int64
)

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		user := &models.User{Email: userEmail, Name: userName}
		if userChatID != 0 {
			user.TelegramChatID = &userChatID
		}
		if err := a.store.Users.Create(cmd.Context(), user); err != nil {
			return err
		}
		fmt.Printf("✅ Added user %d (%s)\n", user.ID, user.Email)
		return nil
	},
}

var (
	prefsUser      int64
	prefsTimezone  string
	prefsPreferred string
	prefsQuiet     string
	prefsDays      string
	prefsMaxDaily  int
	prefsFrequency int
	prefsNoPrompts bool
)

var userPrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or update notification preferences",
	Long: `Show or update notification preferences.
Only the flags that are given change; --quiet takes HH:MM-HH:MM or "none".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if _, err := a.store.Users.GetByID(ctx, prefsUser); err != nil {
			return err
		}
		prefs, err := a.store.Users.GetUserPreferences(ctx, prefsUser)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		changed := false
		if flags.Changed("timezone") {
			prefs.Timezone, changed = prefsTimezone, true
		}
		if flags.Changed("preferred-time") {
			prefs.PreferredTime, changed = optional(prefsPreferred), true
		}
		if flags.Changed("quiet") {
			prefs.QuietHoursStart, prefs.QuietHoursEnd = nil, nil
			if prefsQuiet != "" && prefsQuiet != "none" {
				start, end, ok := strings.Cut(prefsQuiet, "-")
				if !ok {
					return fmt.Errorf("quiet hours must look like 22:00-07:00")
				}
				prefs.QuietHoursStart, prefs.QuietHoursEnd = optional(start), optional(end)
			}
			changed = true
		}
		if flags.Changed("days") {
			prefs.PreferredDays = nil
			for _, d := range strings.Split(prefsDays, ",") {
				if d = strings.TrimSpace(d); d != "" {
					prefs.PreferredDays = append(prefs.PreferredDays, d)
				}
			}
			changed = true
		}
		if flags.Changed("max-daily") {
			prefs.MaxDailyReviews, changed = prefsMaxDaily, true
		}
		if flags.Changed("frequency") {
			prefs.EmailPromptsFrequency, changed = prefsFrequency, true
		}
		if flags.Changed("no-prompts") {
			prefs.EmailPromptsEnabled, changed = !prefsNoPrompts, true
		}

		if changed {
			// reject anything the notification gate could not evaluate
			if _, err := notification.IsGoodTimeToNotify(prefs, time.Now()); err != nil {
				return err
			}
			if err := a.store.Users.SavePreferences(ctx, &prefs); err != nil {
				return err
			}
			fmt.Println("✅ Preferences saved")
		}

		printPrefs(prefs)
		return nil
	},
}

var checkUser int64

var userCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Tell whether now is a good time to notify a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		decision, err := a.service.IsGoodTimeToNotify(cmd.Context(), checkUser)
		if err != nil {
			return err
		}
		if decision.ShouldSend {
			fmt.Println("✅", decision.Reason)
		} else {
			fmt.Printf("⏸ %s", decision.Reason)
			if decision.NextAvailableWindow != nil {
				fmt.Printf(", next window %s", decision.NextAvailableWindow.Format("2006-01-02 15:04 MST"))
			}
			fmt.Println()
		}

		next, err := a.service.GetNextTopicForPrompt(cmd.Context(), checkUser)
		if err != nil {
			return err
		}
		if next == nil {
			fmt.Println("Nothing to send: no urgent topic has a question.")
			return nil
		}
		fmt.Printf("Next prompt: [%s] %s\n", next.TopicName, next.QuestionText)
		return nil
	},
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func printPrefs(p models.UserPreferences) {
	days := "any"
	if len(p.PreferredDays) > 0 {
		days = strings.Join(p.PreferredDays, ", ")
	}
	fmt.Printf("timezone:       %s\n", p.Timezone)
	fmt.Printf("preferred time: %s\n", deref(p.PreferredTime))
	fmt.Printf("quiet hours:    %s - %s\n", deref(p.QuietHoursStart), deref(p.QuietHoursEnd))
	fmt.Printf("days:           %s\n", days)
	fmt.Printf("max daily:      %d\n", p.MaxDailyReviews)
	fmt.Printf("prompts/week:   %d (enabled: %t)\n", p.EmailPromptsFrequency, p.EmailPromptsEnabled)
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd, userPrefsCmd, userCheckCmd)

	userAddCmd.Flags().StringVar(&userEmail, "email", "", "Email address")
	userAddCmd.Flags().StringVar(&userName, "name", "", "Display name")
	userAddCmd.Flags().Int64Var(&userChatID, "telegram-chat", 0, "Telegram chat ID")
	_ = userAddCmd.MarkFlagRequired("email")

	f := userPrefsCmd.Flags()
	f.Int64Var(&prefsUser, "user", 0, "User ID")
	f.StringVar(&prefsTimezone, "timezone", "", "IANA timezone, e.g. Europe/Berlin")
	f.StringVar(&prefsPreferred, "preferred-time", "", "Preferred send time HH:MM (empty clears)")
	f.StringVar(&prefsQuiet, "quiet", "", "Quiet hours HH:MM-HH:MM or none")
	f.StringVar(&prefsDays, "days", "", "Comma separated weekdays (empty means any day)")
	f.IntVar(&prefsMaxDaily, "max-daily", models.DefaultMaxDailyReviews, "Maximum reviews per day")
	f.IntVar(&prefsFrequency, "frequency", models.DefaultEmailPromptsFrequency, "Prompts per week")
	f.BoolVar(&prefsNoPrompts, "no-prompts", false, "Disable review prompts")
	_ = userPrefsCmd.MarkFlagRequired("user")

	userCheckCmd.Flags().Int64Var(&checkUser, "user", 0, "User ID")
	_ = userCheckCmd.MarkFlagRequired("user")
}
