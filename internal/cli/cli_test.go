package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbtn/compliance-audit/internal/cli"
)

func TestInitViperConfig(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		configContent string
		noConfigFlag  bool
		absentFile    bool

		wantErr  bool
		wantHost string
	}{
		"No config flag set":    {noConfigFlag: true},
		"Valid config file":     {configContent: "[mail]\nhost = \"imap.example.com\"\n", wantHost: "imap.example.com"},
		"Absent config file":    {absentFile: true, wantErr: true},
		"Malformed config file": {configContent: "mail = [broken", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			vip := viper.New()
			var initErr error
			cmd := &cobra.Command{
				Use:           "test",
				SilenceErrors: true,
				SilenceUsage:  true,
				RunE: func(cmd *cobra.Command, args []string) error {
					initErr = cli.InitViperConfig(cmd, vip)
					return initErr
				},
			}
			cli.InstallConfigFlag(cmd)

			var args []string
			if !tc.noConfigFlag {
				path := filepath.Join(t.TempDir(), "config.toml")
				if !tc.absentFile {
					require.NoError(t, os.WriteFile(path, []byte(tc.configContent), 0o600))
				}
				args = []string{"--config", path}
			}
			cmd.SetArgs(args)
			err := cmd.Execute()

			if tc.wantErr {
				require.Error(t, err)
				require.Error(t, initErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantHost, vip.GetString("mail.host"))
		})
	}
}
