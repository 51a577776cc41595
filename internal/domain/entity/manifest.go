package entity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumns возвращается, когда в таблице нет обязательных колонок.
var ErrMissingColumns = errors.New("missing required columns")

// Manifest таблица CSV с сохранением порядка колонок и исходных значений ячеек.
type Manifest struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewManifest создаёт таблицу; строки короче заголовка дополняются пустыми ячейками.
func NewManifest(header []string, rows [][]string) *Manifest {
	m := &Manifest{Header: append([]string(nil), header...)}
	m.reindex()

	m.Rows = make([][]string, 0, len(rows))
	for _, row := range rows {
		m.Rows = append(m.Rows, m.normalize(row))
	}
	return m
}

func (m *Manifest) reindex() {
	m.index = make(map[string]int, len(m.Header))
	for i, name := range m.Header {
		if _, exists := m.index[name]; !exists {
			m.index[name] = i
		}
	}
}

func (m *Manifest) normalize(row []string) []string {
	out := make([]string, len(m.Header))
	copy(out, row)
	return out
}

// Len возвращает количество строк
func (m *Manifest) Len() int {
	return len(m.Rows)
}

// Has проверяет наличие колонки
func (m *Manifest) Has(column string) bool {
	_, ok := m.index[column]
	return ok
}

// Require проверяет наличие всех колонок и перечисляет отсутствующие.
func (m *Manifest) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !m.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// EnsureColumn добавляет пустую колонку, если её ещё нет.
func (m *Manifest) EnsureColumn(column string) {
	if m.Has(column) {
		return
	}
	m.Header = append(m.Header, column)
	m.index[column] = len(m.Header) - 1
	for i := range m.Rows {
		m.Rows[i] = append(m.Rows[i], "")
	}
}

// Get возвращает значение ячейки или пустую строку для неизвестной колонки.
func (m *Manifest) Get(row int, column string) string {
	i, ok := m.index[column]
	if !ok {
		return ""
	}
	return m.Rows[row][i]
}

// Column возвращает значения колонки по всем строкам.
func (m *Manifest) Column(column string) []string {
	out := make([]string, m.Len())
	for i := range m.Rows {
		out[i] = m.Get(i, column)
	}
	return out
}

// Set записывает значение ячейки; колонка должна существовать.
func (m *Manifest) Set(row int, column, value string) {
	if i, ok := m.index[column]; ok {
		m.Rows[row][i] = value
	}
}

// Select возвращает новую таблицу из указанных строк в заданном порядке.
func (m *Manifest) Select(rows []int) *Manifest {
	out := &Manifest{Header: append([]string(nil), m.Header...)}
	out.reindex()
	out.Rows = make([][]string, 0, len(rows))
	for _, r := range rows {
		out.Rows = append(out.Rows, append([]string(nil), m.Rows[r]...))
	}
	return out
}

// IsMissing повторяет правила pandas для пустых значений.
func IsMissing(value string) bool {
	switch strings.TrimSpace(value) {
	case "", "NaN", "nan", "NA", "N/A", "null", "None":
		return true
	}
	return false
}
