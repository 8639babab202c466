package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"traintrack/internal/domain/models"
)

// Catalog is the YAML layout accepted by LoadCatalog.
type Catalog struct {
	Trains []models.TrainRoute `yaml:"trains"`
}

// LoadCatalog returns the built-in sample routes when path is empty and
// otherwise reads routes from a YAML file.
func LoadCatalog(path string) ([]models.TrainRoute, error) {
	if path == "" {
		return SampleTrains(), nil
	}

	var c Catalog
	if err := cleanenv.ReadConfig(path, &c); err != nil {
		return nil, fmt.Errorf("could not read catalog %s: %w", path, err)
	}
	if len(c.Trains) == 0 {
		return nil, fmt.Errorf("catalog %s has no trains", path)
	}
	return c.Trains, nil
}

func standardClasses() []models.ClassAvailability {
	return []models.ClassAvailability{
		{ClassCode: "SL", TotalSeats: 200, AvailableSeats: 150, Price: 1200},
		{ClassCode: "3A", TotalSeats: 64, AvailableSeats: 45, Price: 2500},
		{ClassCode: "2A", TotalSeats: 48, AvailableSeats: 22, Price: 3500},
		{ClassCode: "1A", TotalSeats: 24, AvailableSeats: 8, Price: 4800},
		{ClassCode: "CC", TotalSeats: 80, AvailableSeats: 60, Price: 1800},
		{ClassCode: "EC", TotalSeats: 40, AvailableSeats: 20, Price: 3200},
	}
}

func route(number, name, from, to, dep, arr, dur string) models.TrainRoute {
	return models.TrainRoute{
		TrainNumber:   number,
		TrainName:     name,
		FromStation:   from,
		ToStation:     to,
		DepartureTime: dep,
		ArrivalTime:   arr,
		Duration:      dur,
		Availability:  standardClasses(),
	}
}

// SampleTrains is the demo catalog. Reverse runs carry their own numbers.
func SampleTrains() []models.TrainRoute {
	return []models.TrainRoute{
		route("12951", "Mumbai Rajdhani", "New Delhi (NDLS)", "Mumbai (CST)", "17:00", "08:35", "15h 35m"),
		route("12001", "Shatabdi Express", "New Delhi (NDLS)", "Bhopal (BPL)", "06:00", "14:05", "8h 5m"),
		route("12301", "Howrah Rajdhani", "New Delhi (NDLS)", "Howrah (HWH)", "16:55", "09:55", "17h 0m"),
		route("12952", "Mumbai Rajdhani", "Mumbai (CST)", "New Delhi (NDLS)", "17:00", "08:35", "15h 35m"),
		route("12423", "Dibrugarh Rajdhani", "New Delhi (NDLS)", "Dibrugarh (DBRG)", "11:00", "14:55", "51h 55m"),
		route("12429", "Lucknow Shatabdi", "New Delhi (NDLS)", "Lucknow (LKO)", "06:10", "12:35", "6h 25m"),
		route("12302", "Howrah Rajdhani", "Howrah (HWH)", "New Delhi (NDLS)", "16:55", "09:55", "17h 0m"),
		route("12009", "Shatabdi Express", "Mumbai (CST)", "Ahmedabad (ADI)", "06:00", "13:00", "7h 0m"),
	}
}
