package iocli

//go:generate moq -out io_mock.go . IO

// IO абстрагирует ввод и вывод CLI
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	Write(p []byte) (n int, err error)
	// IsTerminal сообщает, что вывод идёт в терминал (можно использовать символы оформления)
	IsTerminal() bool
}
