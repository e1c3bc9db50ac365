package airquality

// City is a selectable city with its coordinates.
type City struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

var cities = []City{
	{Name: "São Paulo", Lat: -23.5505, Lon: -46.6333},
	{Name: "Rio de Janeiro", Lat: -22.9068, Lon: -43.1729},
	{Name: "Brasília", Lat: -15.7975, Lon: -47.8919},
	{Name: "Salvador", Lat: -12.9714, Lon: -38.5014},
	{Name: "Fortaleza", Lat: -3.7172, Lon: -38.5433},
	{Name: "Belo Horizonte", Lat: -19.9191, Lon: -43.9386},
	{Name: "Manaus", Lat: -3.1190, Lon: -60.0217},
	{Name: "Curitiba", Lat: -25.4284, Lon: -49.2733},
	{Name: "Recife", Lat: -8.0476, Lon: -34.8770},
	{Name: "Goiânia", Lat: -16.6869, Lon: -49.2648},
	{Name: "Belém", Lat: -1.4558, Lon: -48.4902},
	{Name: "Porto Alegre", Lat: -30.0346, Lon: -51.2177},
	{Name: "Guarulhos", Lat: -23.4544, Lon: -46.5333},
	{Name: "Campinas", Lat: -22.9056, Lon: -47.0608},
	{Name: "São Luís", Lat: -2.5307, Lon: -44.3068},
	{Name: "Maceió", Lat: -9.6658, Lon: -35.7350},
	{Name: "João Pessoa", Lat: -7.1195, Lon: -34.8450},
	{Name: "Natal", Lat: -5.7793, Lon: -35.2009},
	{Name: "Teresina", Lat: -5.0892, Lon: -42.8016},
	{Name: "Campo Grande", Lat: -20.4697, Lon: -54.6201},
	{Name: "Cuiabá", Lat: -15.6010, Lon: -56.0979},
	{Name: "Aracaju", Lat: -10.9091, Lon: -37.0678},
	{Name: "Florianópolis", Lat: -27.5954, Lon: -48.5480},
	{Name: "Porto Velho", Lat: -8.7612, Lon: -63.9004},
	{Name: "Boa Vista", Lat: 2.8235, Lon: -60.6758},
	{Name: "Rio Branco", Lat: -9.9747, Lon: -67.8100},
	{Name: "Vitória", Lat: -20.3155, Lon: -40.3128},
	{Name: "Macapá", Lat: 0.0340, Lon: -51.0695},
	{Name: "Palmas", Lat: -10.1844, Lon: -48.3336},
}

// Cities returns the selectable cities in picker order.
// The returned slice is a copy.
func Cities() []City {
	out := make([]City, len(cities))
	copy(out, cities)
	return out
}

// DefaultCity returns the city preselected in the picker.
func DefaultCity() City {
	return cities[0]
}

// LookupCity finds a city by its exact name.
func LookupCity(name string) (City, bool) {
	for _, c := range cities {
		if c.Name == name {
			return c, true
		}
	}
	return City{}, false
}
