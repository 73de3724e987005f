package crdt

import "github.com/iudanet/tasksync/internal/models"

// Side указывает, чья версия победила при разрешении конфликта
type Side string

const (
	SideLocal  Side = "local"
	SideRemote Side = "remote"
)

// Resolution результат разрешения конфликта между двумя версиями задачи
type Resolution struct {
	Winner *models.Task
	Side   Side
}

// Resolve применяет правило Last-Write-Wins к двум снимкам одной задачи.
// Побеждает снимок со строго большим UpdatedAt; при равенстве побеждает local,
// так как разрешение инициировано локальной стороной.
// Функция не имеет побочных эффектов и не изменяет аргументы.
func Resolve(local, remote *models.Task) Resolution {
	if remote.IsNewerThan(local) {
		return Resolution{Winner: remote.Clone(), Side: SideRemote}
	}
	return Resolution{Winner: local.Clone(), Side: SideLocal}
}
