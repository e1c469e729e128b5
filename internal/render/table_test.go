package render

import (
	"strings"
	"testing"

	"github.com/hanpama/ods/internal/document"
)

func TestBasicTable(t *testing.T) {
	table := &Table{
		Rows: []document.Row{
			{"A", "B", "C"},
			{"1", "2", "3"},
		},
	}

	result := table.Render()
	t.Logf("\n%s", result)

	checkAllLinesEqualWidth(t, result)

	want := "+---+---+---+\n" +
		"| A | B | C |\n" +
		"+---+---+---+\n" +
		"| 1 | 2 | 3 |\n" +
		"+---+---+---+\n"
	if result != want {
		t.Errorf("Render() =\n%s\nwant\n%s", result, want)
	}
}

func TestRaggedRows(t *testing.T) {
	table := &Table{
		Rows: []document.Row{
			{"name", "qty", "note"},
			{"apple"},
			{},
			{"", "", "long note text"},
		},
	}

	result := table.Render()
	t.Logf("\n%s", result)

	checkAllLinesEqualWidth(t, result)

	// top border + 4 rows each followed by a border + trailing newline
	lines := strings.Split(result, "\n")
	if len(lines) != 10 {
		t.Errorf("Expected 10 lines, got %d", len(lines))
	}
}

func TestMultilineCell(t *testing.T) {
	table := &Table{
		Rows: []document.Row{
			{"A", "첫째줄\n둘째줄\n셋째줄"},
			{"B", "단일줄"},
		},
	}

	result := table.Render()
	t.Logf("\n%s", result)

	checkAllLinesEqualWidth(t, result)

	// top border + 3 display rows + middle border + 1 display row + bottom border + trailing newline = 8 lines
	lines := strings.Split(result, "\n")
	if len(lines) != 8 {
		t.Errorf("Expected 8 lines, got %d", len(lines))
	}
}

func TestHeaderStyle(t *testing.T) {
	table := &Table{
		Rows: []document.Row{
			{"h1", "h2"},
			{"v1", "v2"},
		},
		HeaderStyle: func(s string) string { return strings.ToUpper(s) },
	}

	result := table.Render()
	if !strings.Contains(result, "| H1 | H2 |") {
		t.Errorf("header not styled:\n%s", result)
	}
	if !strings.Contains(result, "| v1 | v2 |") {
		t.Errorf("body row styled:\n%s", result)
	}
}

func TestEmptyTable(t *testing.T) {
	table := &Table{}
	if got := table.Render(); got != "" {
		t.Errorf("Render() = %q, want empty", got)
	}
}

type sliceScanner struct {
	rows []document.Row
}

func (s *sliceScanner) Next() (document.Row, bool) {
	if len(s.rows) == 0 {
		return nil, false
	}
	row := s.rows[0]
	s.rows = s.rows[1:]
	return row, true
}

func TestRenderTextBatches(t *testing.T) {
	scanner := &sliceScanner{rows: []document.Row{{"a"}, {"b"}, {"c"}}}

	var sb strings.Builder
	if err := RenderText(scanner, &sb, 2, nil); err != nil {
		t.Fatalf("RenderText: %v", err)
	}

	want := "+---+\n| a |\n+---+\n| b |\n+---+\n" +
		"+---+\n| c |\n+---+\n"
	if sb.String() != want {
		t.Errorf("RenderText() =\n%s\nwant\n%s", sb.String(), want)
	}
}

func checkAllLinesEqualWidth(t *testing.T, result string) {
	lines := strings.Split(result, "\n")
	var firstLineWidth int
	for i, line := range lines {
		if line == "" {
			continue
		}
		width := displayWidth(line)
		if firstLineWidth == 0 {
			firstLineWidth = width
		}
		if width != firstLineWidth {
			t.Errorf("Line %d has different display width: expected %d, got %d\nLine: %s", i, firstLineWidth, width, line)
		}
	}
}
