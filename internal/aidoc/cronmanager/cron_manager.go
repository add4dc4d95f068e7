// Пакет для управления cron-задачами.
//
// Основные возможности:
//   - Регистрация фоновых задач с расписанием.
//   - Запуск и остановка cron-диспетчера.
//   - Восстановление после паники внутри задачи.
package cronmanager

import (
	"fmt"
	"sync"

	"log/slog"

	"github.com/robfig/cron/v3"
)

type CronJobFunc func()

type CronManager struct {
	dispatcher *cron.Cron
	jobs       map[string]cron.EntryID
	mu         sync.Mutex
}

// NewCronManager создает новый менеджер для планирования задач.
func NewCronManager() *CronManager {
	dispatcher := cron.New(
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)

	return &CronManager{
		dispatcher: dispatcher,
		jobs:       make(map[string]cron.EntryID),
	}
}

// AddJob добавляет задачу в расписание. Повторная регистрация под тем же
// именем заменяет старую задачу.
func (cm *CronManager) AddJob(name string, schedule string, fn CronJobFunc) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if entryID, exists := cm.jobs[name]; exists {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}

	id, err := cm.dispatcher.AddFunc(schedule, fn)
	if err != nil {
		slog.Error("Failed to add job", "name", name, "err", err)
		return fmt.Errorf("Failed to add job '%s': %v", name, err)
	}
	cm.jobs[name] = id
	return nil
}

// RemoveJob удаляет задачу из расписания по имени.
func (cm *CronManager) RemoveJob(name string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if entryID, exists := cm.jobs[name]; exists {
		cm.dispatcher.Remove(entryID)
		delete(cm.jobs, name)
	}
}

// Start запускает диспетчер.
func (cm *CronManager) Start() {
	cm.dispatcher.Start()
}

// Stop останавливает диспетчер и дожидается завершения активных задач.
func (cm *CronManager) Stop() {
	ctx := cm.dispatcher.Stop()
	<-ctx.Done()
}
