package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/flipwatch/internal/screenconfig"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "스크리닝 프로필 관리",
	Long: `스크리닝 프로필(YAML)을 검증하고 해시를 확인합니다.

명령어:
  check   프로필 검증 + 경고 + 해시 출력`,
}

var profileCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "프로필 검증",
	Long: `프로필을 검증합니다. path를 생략하면 --profile / SCREEN_PROFILE,
둘 다 없으면 환경변수로 만든 프로필을 검사합니다.

Example:
  go run ./cmd/flipwatch profile check config/screen/tw_flip.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProfileCheck,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileCheckCmd)
}

func runProfileCheck(cmd *cobra.Command, args []string) error {
	var (
		profile *screenconfig.Config
		source  string
		err     error
	)

	if len(args) == 1 {
		source = args[0]
		profile, _, err = screenconfig.Load(source)
	} else {
		cfg, cerr := loadConfig()
		if cerr != nil {
			return cerr
		}
		source = cfg.Screening.ProfilePath
		if source == "" {
			source = "(environment)"
		}
		profile, _, err = screenconfig.Resolve(cfg)
	}
	if err != nil {
		PrintError(err.Error())
		return err
	}

	hash, err := screenconfig.Hash(profile)
	if err != nil {
		return err
	}

	PrintHeader("Screening profile " + source)
	PrintKeyValue("Profile", profile.Meta.ProfileID+" v"+profile.Meta.Version, 18)
	PrintKeyValue("UTC offset", fmt.Sprintf("%+d", profile.UTCOffset()), 18)
	PrintKeyValue("Cutoff", profile.Session.Cutoff, 18)
	PrintKeyValue("Limit-up", profile.LimitUpThreshold().String(), 18)
	PrintKeyValue("Net-buy threshold", strconv.FormatInt(profile.NetBuyThreshold(), 10), 18)
	PrintKeyValue("Lot size", strconv.FormatInt(profile.Flow.LotSize, 10), 18)
	PrintKeyValue("Hash", hash, 18)
	PrintSeparator()
	PrintList(profile.WatchList().Names())

	warnings := screenconfig.Warn(profile)
	if len(warnings) > 0 {
		fmt.Println()
		for _, w := range warnings {
			PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
		}
	}

	fmt.Println()
	PrintSuccess("Profile is valid")
	return nil
}
