package notifier

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Houeta/catalog-watcher/internal/config"
	"github.com/Houeta/catalog-watcher/internal/models"
)

// Layout selects how sections are spaced.
type Layout int

const (
	// LayoutConsole separates sections with a blank line.
	LayoutConsole Layout = iota
	// LayoutCompact is used for chat messages.
	LayoutCompact
)

const separator = "━━━━━━━━━━━━"

// Section glyphs.
const (
	glyphHeader  = "🆕"
	glyphAdded   = "■"
	glyphRemoved = "🗑️"
	glyphPrice   = "💰"
)

// hourToken stands for the 24-hour clock hour without padding, which time layouts cannot express.
const hourToken = "{H}"

// timeLayouts maps a base language to its footer timestamp layout.
var timeLayouts = map[language.Base]string{
	mustBase("ja"): "2006/1/2 " + hourToken + ":04:05",
	mustBase("en"): "1/2/2006, 3:04:05 PM",
	mustBase("de"): "2.1.2006, 15:04:05",
	mustBase("fr"): "02/01/2006 15:04:05",
}

const defaultTimeLayout = "2006-01-02 15:04:05"

func mustBase(s string) language.Base {
	return language.MustParseBase(s)
}

// Formatter renders a diff and the current snapshot into notification text.
// Every literal comes from MessageConfig.
type Formatter struct {
	messages config.MessageConfig
	location *time.Location
	printer  *message.Printer
	layout   string
	style    Layout
	now      func() time.Time
}

// NewFormatter builds a formatter for the locale and timezone of site.
func NewFormatter(site config.SiteConfig, messages config.MessageConfig, style Layout) *Formatter {
	tag, err := language.Parse(site.Locale)
	if err != nil {
		tag = language.Und
	}

	layout := defaultTimeLayout
	if base, conf := tag.Base(); conf == language.Exact {
		if l, ok := timeLayouts[base]; ok {
			layout = l
		}
	}

	return &Formatter{
		messages: messages,
		location: site.Location(),
		printer:  message.NewPrinter(tag),
		layout:   layout,
		style:    style,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for the footer.
func (f *Formatter) WithClock(now func() time.Time) *Formatter {
	f.now = now
	return f
}

// FormatTime renders t in the configured timezone and locale.
func (f *Formatter) FormatTime(t time.Time) string {
	local := t.In(f.location)
	return strings.Replace(local.Format(f.layout), hourToken, strconv.Itoa(local.Hour()), 1)
}

// Format renders changes followed by a footer with the current time and product count.
// Empty sections are omitted.
func (f *Formatter) Format(changes *models.Changes, current []models.Product) string {
	msg := f.messages
	lines := make([]string, 0, 16)

	if len(changes.Added) > 0 {
		lines = append(lines,
			f.block(glyphHeader+" "+msg.Header)+"\n",
			glyphAdded+" "+msg.Added+" ("+f.count(len(changes.Added))+")",
			separator+"\n",
		)
		for i, p := range changes.Added {
			lines = append(lines, f.entry(i, p)+"\n")
		}
	}

	if len(changes.Removed) > 0 {
		lines = append(lines,
			f.block(glyphRemoved+" "+msg.Removed+" ("+f.count(len(changes.Removed))+")"),
			separator+"\n",
		)
		for i, p := range changes.Removed {
			lines = append(lines, f.entry(i, p)+"\n")
		}
	}

	if len(changes.PriceChanged) > 0 {
		lines = append(lines,
			f.block(glyphPrice+" "+msg.PriceChanged+" ("+f.count(len(changes.PriceChanged))+")"),
			separator+"\n",
		)
		for i, pc := range changes.PriceChanged {
			lines = append(lines,
				strconv.Itoa(i+1)+". "+pc.Product.Name,
				"   "+pc.OldPrice+" → "+pc.NewPrice,
				"   "+pc.Product.URL+"\n",
			)
		}
	}

	lines = append(lines,
		separator,
		msg.TimeLabel+": "+f.FormatTime(f.now()),
		msg.CountLabel+": "+f.count(len(current)),
	)

	return strings.Join(lines, "\n")
}

func (f *Formatter) block(title string) string {
	if f.style == LayoutConsole {
		return "\n" + title
	}
	return title
}

func (f *Formatter) count(n int) string {
	return f.printer.Sprintf("%d", n) + f.messages.CountUnit
}

func (f *Formatter) entry(i int, p models.Product) string {
	return strconv.Itoa(i+1) + ". " + p.Name + "\n" +
		"   " + f.messages.ColorLabel + ": " + p.Color + "\n" +
		"   " + f.messages.PriceLabel + ": " + p.Price + "\n" +
		"   " + p.URL
}
