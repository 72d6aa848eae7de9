// Пакет validate — проверки формы входных данных форм портала.
// Только shape-валидация: кросс-сущностные бизнес-правила проверяются
// сервисным слоем и БД.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	cnpRe      = regexp.MustCompile(`^\d{13}$`)
	specialRe  = regexp.MustCompile(`[!@#$%^&*]`)
	countersRe = regexp.MustCompile(`^counters=(\d+)$`)
)

// CNP проверяет внешний идентификатор гражданина: ровно 13 цифр.
func CNP(cnp string) bool {
	return cnpRe.MatchString(cnp)
}

// Password проверяет пароль: не короче 8 символов и хотя бы один
// из спецсимволов !@#$%^&*.
func Password(password string) bool {
	return len(password) >= 8 && specialRe.MatchString(password)
}

// CounterConfig разбирает строку конфигурации окон вида "counters=<digits>".
// Возвращает количество окон или ошибку при неверном формате либо нуле.
func CounterConfig(line string) (int, error) {
	m := countersRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, fmt.Errorf("неверный формат конфигурации окон: %q (ожидается counters=<число>)", line)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("неверное количество окон: %q", m[1])
	}
	if n < 1 {
		return 0, fmt.Errorf("количество окон должно быть не меньше 1, получено %d", n)
	}
	return n, nil
}
