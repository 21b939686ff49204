package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"osrs-quests-scraper/internal/checksum"
	"osrs-quests-scraper/internal/config"
)

type Scraper struct {
	locator  *config.Locator
	checksum *checksum.Generator
}

func NewScraper(locator *config.Locator) *Scraper {
	return &Scraper{
		locator:  locator,
		checksum: checksum.NewGenerator(),
	}
}

// Locator возвращает локатор, по которому ищется таблица
func (s *Scraper) Locator() *config.Locator {
	return s.locator
}

// Extract разбирает outerHTML таблицы. Строки идут строго в порядке документа;
// битые строки попадают в Table.Errors, пропустить их или прервать прогон решает вызывающий
func (s *Scraper) Extract(tableHTML, pageURL string) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	body := doc.Find(s.locator.BodySelector).First()
	if body.Length() == 0 {
		return nil, fmt.Errorf("%w: table body %q not found", ErrExtraction, s.locator.BodySelector)
	}

	base, _ := url.Parse(pageURL)
	table := &Table{}
	table.Headers = s.headers(doc)
	if len(table.Headers) > 0 {
		table.HeaderChecksum = s.checksum.HeaderFingerprint(table.Headers)
	}

	// Только прямые потомки tbody: вложенные таблицы в ячейках не должны сбивать нумерацию
	body.ChildrenFiltered(s.locator.RowSelector).Each(func(i int, row *goquery.Selection) {
		cells := row.ChildrenFiltered(s.locator.CellSelector)
		if cells.Length() == 0 {
			table.SkippedHeaders++
			return
		}

		raw, err := s.extractRow(i, cells, base)
		if err != nil {
			table.Errors = append(table.Errors, &RowError{Position: i, Err: err})
			return
		}
		table.Rows = append(table.Rows, *raw)
	})

	return table, nil
}

func (s *Scraper) extractRow(pos int, cells *goquery.Selection, base *url.URL) (*RawQuest, error) {
	cols := s.locator.Columns
	if cells.Length() <= cols.Max() {
		return nil, fmt.Errorf("%w: expected at least %d cells, got %d", ErrExtraction, cols.Max()+1, cells.Length())
	}

	cell := func(i int) *goquery.Selection { return cells.Eq(i) }

	raw := &RawQuest{
		Position:    pos,
		Number:      cellText(cell(cols.Number)),
		Difficulty:  cellText(cell(cols.Difficulty)),
		Length:      cellText(cell(cols.Length)),
		QuestPoints: cellText(cell(cols.QuestPoints)),
		Series:      cellText(cell(cols.Series)),
		ReleaseDate: cellText(cell(cols.ReleaseDate)),
	}

	nameCell := cell(cols.Name)
	raw.Name = strings.TrimSpace(attrOrLink(nameCell, "title"))
	if raw.Name == "" {
		raw.Name = cellText(nameCell)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("%w: empty quest name", ErrExtraction)
	}

	if href := attrOrLink(nameCell, "href"); href != "" {
		raw.Link = resolveLink(base, href)
	}

	if raw.Number == "" {
		return nil, fmt.Errorf("%w: empty quest number", ErrExtraction)
	}

	return raw, nil
}

func (s *Scraper) headers(doc *goquery.Document) []string {
	if s.locator.HeaderCellSelector == "" {
		return nil
	}

	var headers []string
	doc.Find(s.locator.HeaderCellSelector).Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, cellText(th))
	})
	return headers
}

// attrOrLink берёт атрибут у самой ячейки, иначе у первой ссылки внутри неё
func attrOrLink(cell *goquery.Selection, attr string) string {
	if v, ok := cell.Attr(attr); ok && strings.TrimSpace(v) != "" {
		return v
	}
	if v, ok := cell.Find("a").First().Attr(attr); ok {
		return v
	}
	return ""
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// resolveLink делает ссылку абсолютной относительно страницы и убирает якорь
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base != nil && !ref.IsAbs() {
		ref = base.ResolveReference(ref)
	}
	ref.Fragment = ""
	return ref.String()
}
