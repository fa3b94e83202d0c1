package usos

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"usos_monitor/internal/model"
)

// loginForm holds the fields extracted from the CAS login page.
type loginForm struct {
	Action    string
	Execution string
}

// Subject is one course within a registration category.
type Subject struct {
	Code string
	Name string
}

var nonDigitRe = regexp.MustCompile(`[^\d]`)

func parseLoginForm(r io.Reader) (loginForm, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return loginForm{}, fmt.Errorf("parse html: %w", err)
	}

	form := doc.Find("form").First()
	if form.Length() == 0 {
		return loginForm{}, fmt.Errorf("no login form found")
	}

	lf := loginForm{Action: form.AttrOr("action", "")}
	form.Find(`input[type="hidden"]`).Each(func(_ int, s *goquery.Selection) {
		if s.AttrOr("name", "") == "execution" {
			lf.Execution = s.AttrOr("value", "")
		}
	})
	return lf, nil
}

// parseSubjects extracts the subject list from the category's subject
// selection page. Each subject row carries its course code as the row id.
func parseSubjects(r io.Reader) ([]Subject, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var subjects []Subject
	doc.Find("tr[id]").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		link := cells.First().Find("a").First()
		if link.Length() == 0 {
			return
		}
		subjects = append(subjects, Subject{
			Code: row.AttrOr("id", ""),
			Name: strings.TrimSpace(link.Text()),
		})
	})
	return subjects, nil
}

// parseGroups extracts RawGroup records from a subject's group table. The
// header row drives the column mapping, since USOS reorders columns
// depending on the registration settings. Returns the parsed groups and the
// number of rows skipped because their seat counts were unreadable.
func parseGroups(r io.Reader, subj Subject) ([]model.RawGroup, int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table.grey").First()
	if table.Length() == 0 {
		return nil, 0, nil
	}

	cols := columnMap(table)
	if _, ok := cols["grupa"]; !ok {
		return nil, 0, fmt.Errorf("group table for %s has no recognizable header", subj.Code)
	}

	var groups []model.RawGroup
	skipped := 0
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		cell := func(key string) string {
			idx, ok := cols[key]
			if !ok || idx >= cells.Length() {
				return ""
			}
			return strings.TrimSpace(cells.Eq(idx).Text())
		}

		number := cell("grupa")
		termin := cell("termin")
		if number == "" {
			return
		}

		enrolled, errEnrolled := parseCount(cell("zapisanych"))
		limit, errLimit := parseCount(cell("limit"))
		if errEnrolled != nil || errLimit != nil {
			skipped++
			return
		}

		free := limit - enrolled
		if free < 0 {
			free = 0
		}
		groups = append(groups, model.RawGroup{
			GroupID:            fmt.Sprintf("%s|gr%s", subj.Code, number),
			RegistrationName:   fmt.Sprintf("%s (gr. %s)", subj.Name, number),
			RawTimeDescription: termin,
			FreeSpots:          free,
			TotalSpots:         limit,
		})
	})
	return groups, skipped, nil
}

// columnMap maps logical column names to cell indexes based on the header
// row text.
func columnMap(table *goquery.Selection) map[string]int {
	header := table.Find("tr.headnote").First()
	if header.Length() == 0 {
		header = table.Find("thead tr").First()
	}

	cols := make(map[string]int)
	header.Find("th, td").Each(func(i int, h *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(h.Text()))
		switch {
		case strings.Contains(text, "grupa"):
			cols["grupa"] = i
		case strings.Contains(text, "termin"):
			cols["termin"] = i
		case strings.Contains(text, "zapisanych"):
			cols["zapisanych"] = i
		case strings.Contains(text, "limit"):
			cols["limit"] = i
		}
	})
	return cols
}

func parseCount(raw string) (int, error) {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if digits == "" {
		return 0, fmt.Errorf("no digits in %q", raw)
	}
	return strconv.Atoi(digits)
}
