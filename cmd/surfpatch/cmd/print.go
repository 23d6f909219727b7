package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ssargent/surfpatch/pkg/codec"
	"github.com/ssargent/surfpatch/pkg/patcher"
	"github.com/ssargent/surfpatch/pkg/storage"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(20)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type row struct {
	label string
	value string
}

func section(title string, rows ...row) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(r.value)
		b.WriteByte('\n')
	}
	return b.String()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func optKey(k *solana.PublicKey) string {
	if k == nil {
		return "none"
	}
	return k.String()
}

func optU64(v *uint64) string {
	if v == nil {
		return "none"
	}
	return strconv.FormatUint(*v, 10)
}

func formatAuthority(a codec.Authority) string {
	if a.Address != nil {
		return fmt.Sprintf("%s(%s)", a.Kind, a.Address)
	}
	return a.Kind.String()
}

func formatUpdateAuthority(u codec.UpdateAuthority) string {
	if u.Kind == codec.UpdateAuthorityNone {
		return u.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", u.Kind, u.Address)
}

func printCore(w io.Writer, v *patcher.CoreView) {
	rows := []row{
		{"Program", v.Owner.String()},
		{"Lamports", strconv.FormatUint(v.Lamports, 10)},
		{"Size", fmt.Sprintf("%d bytes (header %d)", v.Size, v.HeaderLen)},
	}
	if a := v.Asset(); a != nil {
		rows = append(rows,
			row{"Owner", a.Owner.String()},
			row{"Update authority", formatUpdateAuthority(a.UpdateAuthority)},
			row{"Name", a.Name},
			row{"URI", a.URI},
			row{"Seq", optU64(a.Seq)},
		)
	}
	if c := v.Collection(); c != nil {
		rows = append(rows,
			row{"Update authority", c.UpdateAuthority.String()},
			row{"Name", c.Name},
			row{"URI", c.URI},
			row{"Minted", strconv.FormatUint(uint64(c.NumMinted), 10)},
			row{"Current size", strconv.FormatUint(uint64(c.CurrentSize), 10)},
		)
	}
	fmt.Fprint(w, section(fmt.Sprintf("%s %s", v.Kind, v.Address), rows...))

	if len(v.Plugins) == 0 {
		return
	}
	fmt.Fprintln(w)
	var plugins []row
	for _, pv := range v.Plugins {
		label := pv.Entry.Kind.String()
		detail := fmt.Sprintf("authority=%s offset=%d", formatAuthority(pv.Entry.Authority), pv.Entry.Offset)
		switch {
		case pv.Err != "":
			detail += " " + errStyle.Render(pv.Err)
		case pv.Plugin != nil:
			if payload, err := json.Marshal(pv.Plugin); err == nil {
				detail += " " + string(payload)
			}
		}
		plugins = append(plugins, row{label, detail})
	}
	fmt.Fprint(w, section(fmt.Sprintf("Plugins (%d)", len(v.Plugins)), plugins...))
	if v.Registry != nil && len(v.Registry.External) > 0 {
		fmt.Fprintf(w, "  %d external plugin adapter(s)\n", len(v.Registry.External))
	}
}

func printTokenRecord(w io.Writer, key solana.PublicKey, tr *codec.TokenRecord) {
	role := "none"
	if tr.DelegateRole != nil {
		role = tr.DelegateRole.String()
	}
	fmt.Fprint(w, section("TokenRecord "+key.String(),
		row{"State", tr.State.String()},
		row{"Bump", strconv.Itoa(int(tr.Bump))},
		row{"Rule set revision", optU64(tr.RuleSetRevision)},
		row{"Delegate", optKey(tr.Delegate)},
		row{"Delegate role", role},
		row{"Locked transfer", optKey(tr.LockedTransfer)},
	))
}

func printTokenAccount(w io.Writer, key solana.PublicKey, ta *codec.TokenAccount) {
	fmt.Fprint(w, section("TokenAccount "+key.String(),
		row{"Mint", ta.Mint.String()},
		row{"Owner", ta.Owner.String()},
		row{"Amount", strconv.FormatUint(ta.Amount, 10)},
		row{"State", ta.State.String()},
		row{"Delegate", optKey(ta.Delegate)},
		row{"Delegated amount", strconv.FormatUint(ta.DelegatedAmount, 10)},
		row{"Native", optU64(ta.IsNative)},
		row{"Close authority", optKey(ta.CloseAuthority)},
	))
}

func printResult(w io.Writer, res *patcher.Result) {
	rows := []row{
		{"Mutation", res.Mutation},
		{"Bytes", fmt.Sprintf("%d -> %d", res.Before, res.After)},
	}
	if res.Snapshot != nil {
		rows = append(rows, row{"Snapshot", res.Snapshot.ID.String()})
	}
	fmt.Fprint(w, section(okStyle.Render("Patched ")+res.Address.String(), rows...))
}

func printPatch(cmd *cobra.Command, res *patcher.Result) error {
	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), res)
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}

func printSnapshots(w io.Writer, snaps []*storage.Snapshot) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No snapshots")
		return
	}
	rows := make([]row, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, row{
			s.ID.String(),
			fmt.Sprintf("%s  %s  %-24s %d bytes", s.TakenAt.Format("2006-01-02 15:04:05"), s.Address, s.Reason, len(s.State.Data)),
		})
	}
	labelWidth := lipgloss.Width(rows[0].label) + 2
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Snapshots (%d)", len(snaps))))
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString("  ")
		b.WriteString(labelStyle.Width(labelWidth).Render(r.label))
		b.WriteString(r.value)
		b.WriteByte('\n')
	}
	fmt.Fprint(w, b.String())
}
