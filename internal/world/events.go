package world

// TickEvent — параметры одного шага симуляции
type TickEvent struct {
	TickID    uint64  // Порядковый номер тика
	DeltaTime float64 // Длительность шага в секундах
	Debug     bool    // Включён ли отладочный режим сессии
}

// Session хранит состояние сеанса, общее для всех тиков: счётчик тиков
// и отладочный режим. Режим переключается по отпусканию клавиши.
type Session struct {
	tick      uint64
	debug     bool
	debugDown bool
}

// NewSession создаёт сеанс с начальным значением отладочного режима
func NewSession(debug bool) *Session {
	return &Session{debug: debug}
}

// Debug сообщает, включён ли отладочный режим
func (s *Session) Debug() bool {
	return s.debug
}

// HandleDebugKey принимает нажатие/отпускание клавиши отладки
func (s *Session) HandleDebugKey(down bool) {
	if s.debugDown && !down {
		s.debug = !s.debug
	}
	s.debugDown = down
}

// Next формирует событие следующего тика
func (s *Session) Next(delta float64) TickEvent {
	s.tick++
	return TickEvent{TickID: s.tick, DeltaTime: delta, Debug: s.debug}
}
