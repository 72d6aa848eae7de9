package model

// Counter — операционное состояние окна обслуживания отдела выдачи.
// Хранится в таблице counters; is_paused — источник истины для воркеров.
type Counter struct {
	// ID — UUID записи
	ID string `json:"id"`
	// CounterID — порядковый номер окна (1..N)
	CounterID int `json:"counterId"`
	// Department — отдел, которому принадлежит окно
	Department string `json:"department"`
	// IsPaused — приостановлено ли окно
	IsPaused bool `json:"isPaused"`
}

// Office — офис из конфигурации администратора.
type Office struct {
	// ID — UUID записи
	ID string `json:"id"`
	// Name — название офиса
	Name string `json:"name"`
	// CounterCount — количество окон обслуживания
	CounterCount int `json:"counters"`
	// Documents — документы, оформляемые офисом
	Documents []OfficeDocument `json:"documents"`
}

// OfficeDocument — документ с зависимостями от других документов.
type OfficeDocument struct {
	// Name — название документа
	Name string `json:"name"`
	// Dependencies — названия документов, требуемых для оформления
	Dependencies []string `json:"dependencies"`
}
