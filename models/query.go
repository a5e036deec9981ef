package models

// DecadeMovie is one row of the longest-movies-per-decade ranking.
type DecadeMovie struct {
	Decade   int    `json:"decade"`
	Rank     int    `json:"rank"`
	MovieID  int64  `json:"movie_id"`
	Title    string `json:"title"`
	Year     int    `json:"year"`
	Duration int    `json:"duration"`
}

// YearRatingStddev is the sample standard deviation of ratings released in
// one year. Years with fewer than two ratings report 0.
type YearRatingStddev struct {
	Year   int     `json:"year"`
	Movies int     `json:"movies"`
	Stddev float64 `json:"rating_stddev"`
}

// RatingGap compares a movie's rating with its metascore scaled to /10.
type RatingGap struct {
	MovieID      int64   `json:"movie_id"`
	Title        string  `json:"title"`
	Rating       float64 `json:"rating"`
	Metascore    float64 `json:"metascore"`
	AbsDiff      float64 `json:"abs_diff"`
	RelativeDiff float64 `json:"relative_diff"`
}

// MovieActorRow is one row of movie_actor_view.
type MovieActorRow struct {
	MovieID   int64    `json:"movie_id"`
	Title     string   `json:"title"`
	Year      *int     `json:"year"`
	Rating    *float64 `json:"rating"`
	Duration  *int     `json:"duration"`
	Metascore *float64 `json:"metascore"`
	ActorName string   `json:"actor_name"`
}
