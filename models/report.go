package models

// InsightReport holds analytics computed over the persisted movies.
type InsightReport struct {
	TotalMovies    int
	RatedMovies    int
	AverageRating  float64
	AverageMinutes float64
	Longest        *Movie
	TopRated       []*Movie
	MoviesByDecade map[int]int
	TopActors      []ActorCount
}

// ActorCount is an actor name with the number of movies it appears in.
type ActorCount struct {
	Name   string
	Movies int
}
