package render

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/lk2023060901/seekcompass-assistant/internal/chat/types"
)

// Renderer 将一条消息呈现为某种输出格式
type Renderer interface {
	RenderMessage(ctx context.Context, msg *types.Message) (string, error)
}

// Table 解析后的管道表格
type Table struct {
	Headers []string
	Rows    [][]string
}

// ParseTable 第一行为表头，第二行为分隔行，其余为数据行
// 单元格按 | 切分并去空白，空单元格丢弃
func ParseTable(content string) Table {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	t := Table{Headers: splitCells(lines[0])}
	if len(lines) > 2 {
		for _, line := range lines[2:] {
			t.Rows = append(t.Rows, splitCells(line))
		}
	}
	return t
}

func splitCells(line string) []string {
	cells := make([]string, 0)
	for _, cell := range strings.Split(line, "|") {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}

// BarWidths 每个数据点相对最大值的百分比宽度，范围 [0,100]
// 最大值不为正时全部为 0
func BarWidths(points []types.ChartPoint) []float64 {
	widths := make([]float64, len(points))
	peak := math.Inf(-1)
	for _, p := range points {
		peak = math.Max(peak, p.Value)
	}
	if peak <= 0 || math.IsInf(peak, 0) || math.IsNaN(peak) {
		return widths
	}
	for i, p := range points {
		widths[i] = math.Min(100, math.Max(0, p.Value/peak*100))
	}
	return widths
}

// DiagramScope 为一次渲染分配互不冲突的流程图 ID
type DiagramScope struct {
	prefix string
	n      int
}

// NewDiagramScope 以消息 ID 作为前缀
func NewDiagramScope(prefix string) *DiagramScope {
	return &DiagramScope{prefix: prefix}
}

// Next 返回 <prefix>-<blockIndex>-<n>
func (s *DiagramScope) Next(blockIndex int) string {
	s.n++
	return s.prefix + "-" + strconv.Itoa(blockIndex) + "-" + strconv.Itoa(s.n)
}
