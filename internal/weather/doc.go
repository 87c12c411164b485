// Package weather fetches temperature data from the three weather sources:
// METAR observations from aviationweather.gov, the Wunderground daily
// history page (scraped, best-effort), and the Open-Meteo hourly forecast.
//
// The history scrape is the only flaky upstream and sits behind a circuit
// breaker; METAR and forecast calls are plain GETs. Field types tolerate
// the METAR API's mixed encodings (wind direction "VRB", visibility "6+").
package weather
