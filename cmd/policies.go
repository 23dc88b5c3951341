package main

import (
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-enrich/internal/eligibility"
)

var policiesFile string

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List and validate eligibility policy profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles := eligibility.DefaultProfiles()
		source := "built-in"
		if policiesFile != "" {
			loaded, err := eligibility.LoadProfiles(policiesFile)
			if err != nil {
				return err
			}
			profiles = loaded
			source = policiesFile
		}

		names := make([]string, 0, len(profiles))
		for name := range profiles {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			p := profiles[name]
			if err := p.Validate(); err != nil {
				return err
			}
			zap.L().Info("policy profile",
				zap.String("name", name),
				zap.Int("min_trusted_sources", p.MinTrustedSources),
				zap.Int("trusted_domains", len(p.TrustedDomains)),
				zap.Float64("official_domain_bonus", p.OfficialDomainBonus),
				zap.Float64("confidence_threshold", p.ConfidenceThreshold),
			)
		}
		zap.L().Info("all profiles valid",
			zap.Int("profiles", len(profiles)),
			zap.String("source", source),
		)
		return nil
	},
}

func init() {
	policiesCmd.Flags().StringVar(&policiesFile, "file", "", "policy profile YAML file (default: built-ins)")
	rootCmd.AddCommand(policiesCmd)
}
