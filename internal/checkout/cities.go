package checkout

import "strings"

// Cities lists the localities the store delivers to. The checkout city field
// must match one of these.
var Cities = []string{
	"Скопје", "Битола", "Куманово", "Прилеп", "Тетово", "Велес",
	"Штип", "Охрид", "Гостивар", "Струмица", "Кавадарци", "Кочани",
	"Кичево", "Струга", "Радовиш", "Гевгелија", "Дебар", "Крива Паланка",
	"Неготино", "Делчево", "Виница", "Ресен", "Свети Николе", "Берово",
	"Пробиштип", "Кратово", "Богданци", "Крушево", "Македонска Каменица",
	"Валандово", "Демир Капија", "Демир Хисар", "Пехчево", "Македонски Брод",
}

func IsKnownCity(name string) bool {
	for _, c := range Cities {
		if strings.EqualFold(c, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
