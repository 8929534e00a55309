// Copyright 2019-2025 The Liqo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package output contains the console printer of recoveryctl.
package output

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
)

func init() {
	// Disable styling if we are not in a standard terminal, as control sequences would not work.
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		pterm.DisableStyling()
	}
}

const (
	levelMultiplier = 4

	boxWidth = 80

	// DefaultErrorExitCode is the exit code used when a command fails.
	DefaultErrorExitCode = 1
)

var (
	// StatusSectionStyle is the style of the status section.
	StatusSectionStyle = pterm.NewStyle(pterm.FgMagenta, pterm.Bold)
	// StatusSectionSuccessStyle is the style of the success status section.
	StatusSectionSuccessStyle = pterm.NewStyle(pterm.FgGreen, pterm.Bold)
	// StatusSectionFailureStyle is the style of the failure status section.
	StatusSectionFailureStyle = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	// StatusDataStyle is the style of the status data.
	StatusDataStyle = pterm.NewStyle(pterm.FgLightYellow, pterm.Bold)
	// StatusWarningStyle is the style of the status warning.
	StatusWarningStyle = pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	// StatusInfoStyle is the style of the status info.
	StatusInfoStyle = pterm.NewStyle(pterm.FgCyan, pterm.Bold)
	// BoxTitleStyle is the style of the box.
	BoxTitleStyle = pterm.NewStyle(pterm.FgMagenta, pterm.Bold)
)

var spinnerCharset = []string{"⠈⠁", "⠈⠑", "⠈⠱", "⠈⡱", "⢀⡱", "⢄⡱", "⢄⡱", "⢆⡱", "⢎⡱", "⢎⡰", "⢎⡠", "⢎⡀", "⢎⠁", "⠎⠁", "⠊⠁"}

// Printer manages all kinds of outputs.
type Printer struct {
	Info    *pterm.PrefixPrinter
	Success *pterm.PrefixPrinter
	Warning *pterm.PrefixPrinter
	Error   *pterm.PrefixPrinter

	box        *pterm.BoxPrinter
	spinner    *pterm.SpinnerPrinter
	BulletList *pterm.BulletListPrinter
	Table      *pterm.TablePrinter
	verbose    bool

	// writer is the destination of the rendered boxes and tables.
	writer io.Writer
}

// BoxPrintln prints a message through the box printer.
func (p *Printer) BoxPrintln(text string) {
	// create a string long as the box width
	widthLine := strings.Repeat("-", boxWidth)
	// insert widthLine inside the text
	text = pterm.Sprintf("%s\n%s", widthLine, text)
	// print the box with widthLine inside to force the box width
	boxText := p.box.Sprintln(text)
	// remove the widthLine (first line) from boxText
	widthLine = strings.Split(boxText, "\n")[1]
	boxText = strings.ReplaceAll(boxText, widthLine+"\n", "")
	pterm.Fprint(p.writer, boxText)
}

// BoxSetTitle sets the title of the box.
func (p *Printer) BoxSetTitle(title string) {
	p.box = p.box.WithTitle(BoxTitleStyle.Sprint(title))
}

// BulletListSprintForBox renders and resets the bullet list, to be printed in a box.
func (p *Printer) BulletListSprintForBox() string {
	// Srender function never throws an error.
	text, err := p.BulletList.Srender()
	utilruntime.Must(err)
	p.BulletList.Items = nil
	return strings.TrimRight(text, "\n")
}

func (p *Printer) bulletListAddItem(msg string, level int, bullet bool) {
	bulletListItem := pterm.BulletListItem{
		Text:  msg,
		Level: level * levelMultiplier,
	}
	if bullet {
		bulletListItem.Bullet = " " + pterm.DefaultBulletList.Bullet
	}
	p.BulletList.Items = append(p.BulletList.Items, bulletListItem)
}

// BulletListAddItemWithoutBullet adds a new message to the BulletListPrinter.
func (p *Printer) BulletListAddItemWithoutBullet(msg string, level int) {
	p.bulletListAddItem(msg, level, false)
}

// BulletListAddItemWithBullet adds a new message to the BulletListPrinter.
func (p *Printer) BulletListAddItemWithBullet(msg string, level int) {
	p.bulletListAddItem(msg, level, true)
}

// PrintTable renders the given rows as a table, the first one being the header.
func (p *Printer) PrintTable(rows [][]string) {
	utilruntime.Must(p.Table.WithData(rows).Render())
}

// StartSpinner starts a new spinner.
func (p *Printer) StartSpinner(text ...interface{}) *pterm.SpinnerPrinter {
	spinner, err := p.spinner.Start(text...)
	utilruntime.Must(err)
	return spinner
}

// SetVerbose enables or disables the verbose messages.
func (p *Printer) SetVerbose(verbose bool) {
	p.verbose = verbose
}

// Verbosef outputs verbose messages guarded by the corresponding flag.
func (p *Printer) Verbosef(format string, args ...interface{}) {
	if p.verbose {
		p.Info.Printfln(strings.TrimRight(format, "\n"), args...)
	}
}

// CheckErr prints a user friendly error and exits with a non-zero exit code.
// If a spinner is currently active, then it is leveraged to print the message,
// otherwise it outputs the message through the printer or, if nil, to STDERR.
func (p *Printer) CheckErr(err error) {
	switch {
	// Shortcircuit in case no error occurred.
	case err == nil:
		return

	// Print the error through the spinner, if specified.
	case p != nil && p.spinner.IsActive:
		p.spinner.Fail(PrettyErr(err))

	// Print the error through the printer, if initialized.
	case p != nil:
		p.Error.Println(PrettyErr(err))

	default:
		_, _ = os.Stderr.WriteString(PrettyErr(err) + "\n")
	}

	os.Exit(DefaultErrorExitCode)
}

// PrettyErr returns a prettified error message.
func PrettyErr(err error) string {
	// Unwrap possible URL errors, to return the prettified message.
	urlErr := &url.Error{}
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	msg := strings.Replace(err.Error(), context.DeadlineExceeded.Error(), "timed out waiting for the condition", 1)
	return strings.TrimRight(msg, "\n")
}

// NewPrinter returns a new printer writing to the standard output.
func NewPrinter(verbose bool) *Printer {
	return newPrinter(os.Stdout, verbose)
}

func newPrinter(writer io.Writer, verbose bool) *Printer {
	generic := &pterm.PrefixPrinter{MessageStyle: pterm.NewStyle(pterm.FgDefault), Writer: writer}

	printer := &Printer{
		verbose: verbose,
		writer:  writer,
		Info: generic.WithPrefix(pterm.Prefix{
			Text:  "INFO",
			Style: pterm.NewStyle(pterm.FgDarkGray),
		}),

		Success: generic.WithPrefix(pterm.Prefix{
			Text:  "INFO",
			Style: pterm.NewStyle(pterm.FgGreen),
		}),

		Warning: generic.WithPrefix(pterm.Prefix{
			Text:  "WARN",
			Style: pterm.NewStyle(pterm.FgYellow),
		}),

		Error: generic.WithPrefix(pterm.Prefix{
			Text:  "ERRO",
			Style: pterm.NewStyle(pterm.FgRed),
		}),
	}

	printer.spinner = &pterm.SpinnerPrinter{
		Sequence:            spinnerCharset,
		Style:               pterm.NewStyle(pterm.FgLightBlue),
		Delay:               time.Millisecond * 100,
		MessageStyle:        pterm.NewStyle(pterm.FgLightBlue),
		SuccessPrinter:      printer.Success,
		WarningPrinter:      printer.Warning,
		FailPrinter:         printer.Error,
		RemoveWhenDone:      false,
		ShowTimer:           true,
		TimerRoundingFactor: time.Second,
		TimerStyle:          &pterm.ThemeDefault.TimerStyle,
	}

	printer.BulletList = &pterm.BulletListPrinter{Writer: writer}

	table := pterm.DefaultTable
	table.HasHeader = true
	table.Writer = writer
	printer.Table = &table

	box := pterm.DefaultBox
	box.Writer = writer
	printer.box = &box

	return printer
}

// NewFakePrinter returns a new printer to be used in tests.
func NewFakePrinter(writer io.Writer) *Printer {
	return newPrinter(writer, true)
}
