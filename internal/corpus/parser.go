package corpus

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rag-api/internal/config"
	"rag-api/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
)

const defaultPageNumber = 1

func parseFile(path string, cfg *config.CorpusConfig) ([]models.Chunk, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return parsePDF(path, cfg)
	case ".docx":
		return parseDOCX(path)
	case ".pptx":
		return parsePPTX(path)
	case ".xlsx":
		return parseXLSX(path)
	case ".ods":
		return parseODS(path)
	case ".md":
		return parseMarkdown(path, cfg)
	case ".txt":
		return parseText(path, cfg)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
}

func parsePDF(path string, cfg *config.CorpusConfig) ([]models.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for i := 1; i <= reader.NumPage(); i++ {
		pageText, err := reader.Page(i).GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunkPage(pageText, i, cfg)...)
	}
	return chunks, nil
}

func parseDOCX(path string) ([]models.Chunk, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var chunks []models.Chunk
	for i, paragraph := range strings.Split(content, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Content:    paragraph,
			PageNumber: defaultPageNumber, // DOCX has no page numbers
			ChunkID:    i + 1,
		})
	}
	return chunks, nil
}

func parsePPTX(path string) ([]models.Chunk, error) {
	f, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []models.Chunk
	for slideNum, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		slideText := extractTextFromXML(string(data))
		if strings.TrimSpace(slideText) == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Content:    slideText,
			PageNumber: slideNum + 1, // treat slides as pages
			ChunkID:    1,
		})
	}
	return chunks, nil
}

func parseXLSX(path string) ([]models.Chunk, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		chunks = append(chunks, models.Chunk{
			Content:    text.String(),
			PageNumber: sheetNum + 1, // treat sheets as pages
			ChunkID:    1,
		})
	}
	return chunks, nil
}

func parseODS(path string) ([]models.Chunk, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []models.Chunk
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		chunks = append(chunks, models.Chunk{
			Content:    text.String(),
			PageNumber: sheetNum + 1,
			ChunkID:    1,
		})
	}
	return chunks, nil
}

func parseMarkdown(path string, cfg *config.CorpusConfig) ([]models.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := markdownToText(data)
	if err != nil {
		return nil, err
	}
	return chunkPage(text, defaultPageNumber, cfg), nil
}

func parseText(path string, cfg *config.CorpusConfig) ([]models.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return chunkPage(string(data), defaultPageNumber, cfg), nil
}

// markdownToText parses GFM markdown and flattens it to plain text, one
// block-level element per line.
func markdownToText(src []byte) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(gmtext.NewReader(src))

	var b strings.Builder
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.Heading, *ast.Paragraph, *ast.ListItem:
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func extractTextFromXML(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		if endIdx := strings.Index(part, "</a:t>"); endIdx >= 0 {
			text.WriteString(part[:endIdx] + " ")
		}
	}
	return text.String()
}

func chunkPage(content string, pageNumber int, cfg *config.CorpusConfig) []models.Chunk {
	var chunks []models.Chunk
	for i, piece := range chunkContent(content, cfg.ChunkSize, cfg.ChunkOverlap) {
		chunks = append(chunks, models.Chunk{
			Content:    piece,
			PageNumber: pageNumber,
			ChunkID:    i + 1,
		})
	}
	return chunks
}

// chunkContent splits content into pieces of at most maxChars characters
// with overlapChars of overlap, preferring to break at whitespace or a
// sentence boundary near the end of each piece.
func chunkContent(content string, maxChars, overlapChars int) []string {
	if maxChars <= 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2
	}
	content = strings.TrimSpace(content)
	if len(content) == 0 {
		return nil
	}
	if len(content) <= maxChars {
		return []string{content}
	}

	var chunks []string
	start := 0
	for start < len(content) {
		end := min(start+maxChars, len(content))

		// look for a clean break in the last 10% of the piece
		if end < len(content) {
			lookBack := min(maxChars/10, end-start)
			for i := end - 1; i >= end-lookBack && i > start; i-- {
				if content[i] == ' ' || content[i] == '\n' || content[i] == '.' {
					end = i + 1
					break
				}
			}
		}

		if piece := strings.TrimSpace(content[start:end]); piece != "" {
			chunks = append(chunks, piece)
		}
		if end == len(content) {
			break
		}

		start += maxChars - overlapChars
	}
	return chunks
}
