package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/coder/quartz"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/Bruzzknock/Meeplelytics/internal/adapters/repository"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/model"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/pairing"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/results"
	"github.com/Bruzzknock/Meeplelytics/internal/domain/rules"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

type fixture struct {
	store      *repository.MemoryStore
	clock      *quartz.Mock
	game       model.Game
	red, blue  model.Team
	players    []model.Player
	tournament model.Tournament
}

func newFixture(t *testing.T, playerCount int) fixture {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	s := repository.NewMemoryStore(repository.WithClock(clock), repository.WithIDGenerator(sequentialIDs()))

	f := fixture{store: s, clock: clock}
	f.red, _ = s.CreateTeam(ctx, "Red", "#f00")
	f.blue, _ = s.CreateTeam(ctx, "Blue", "#00f")
	f.game, _ = s.CreateGame(ctx, "Catan", rules.Ruleset{})

	ids := make([]string, 0, playerCount)
	for i := range playerCount {
		team := f.red.ID
		if i%2 == 1 {
			team = f.blue.ID
		}
		p, err := s.CreatePlayer(ctx, repository.NewPlayer{Name: fmt.Sprintf("P%d", i+1), TeamID: team})
		if err != nil {
			t.Fatalf("create player: %v", err)
		}
		f.players = append(f.players, p)
		ids = append(ids, p.ID)
	}
	tourney, err := s.CreateTournament(ctx, "Spring", f.game.ID, ids)
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	f.tournament = tourney
	return f
}

func settleInOrder(rs rules.Ruleset, seated []string, ratings map[string]int) (results.Settlement, error) {
	subs := make([]results.Submission, len(seated))
	for i, id := range seated {
		subs[i] = results.Submission{PlayerID: id, Placement: i + 1}
	}
	return results.Settle(subs, rs, ratings)
}

func TestMemoryStoreEntities(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := repository.NewMemoryStore(repository.WithIDGenerator(sequentialIDs()))

		Convey("When a team and a player are created", func() {
			team, err := s.CreateTeam(ctx, "  Red  ", "#f00")
			So(err, ShouldBeNil)
			p, err := s.CreatePlayer(ctx, repository.NewPlayer{Name: "Ana", TeamID: team.ID})
			So(err, ShouldBeNil)

			Convey("Then they can be read back", func() {
				So(team.Name, ShouldEqual, "Red")
				got, err := s.GetPlayer(ctx, p.ID)
				So(err, ShouldBeNil)
				So(got.Rating, ShouldEqual, 1500)
				So(got.TeamID, ShouldEqual, team.ID)
				So(s.ListPlayers(ctx), ShouldHaveLength, 1)
				So(s.ListTeams(ctx), ShouldHaveLength, 1)
			})

			Convey("And the player can be renamed and moved out of the team", func() {
				name, none := "Ana B", ""
				got, err := s.UpdatePlayer(ctx, p.ID, repository.PlayerPatch{Name: &name, TeamID: &none})
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Ana B")
				So(got.TeamID, ShouldBeEmpty)
			})

			Convey("And moving the player to an unknown team fails", func() {
				ghost := "ghost"
				_, err := s.UpdatePlayer(ctx, p.ID, repository.PlayerPatch{TeamID: &ghost})
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When names are blank", func() {
			_, errTeam := s.CreateTeam(ctx, " ", "")
			_, errPlayer := s.CreatePlayer(ctx, repository.NewPlayer{Name: ""})
			_, errGame := s.CreateGame(ctx, "", rules.Ruleset{})

			Convey("Then ErrInvalidInput is returned", func() {
				So(errors.Is(errTeam, repository.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(errPlayer, repository.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(errGame, repository.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When a player names an unknown team", func() {
			_, err := s.CreatePlayer(ctx, repository.NewPlayer{Name: "Bo", TeamID: "nope"})

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a game's rules are replaced", func() {
			g, _ := s.CreateGame(ctx, "Azul", rules.Ruleset{})
			k := 30.0
			updated, err := s.UpdateGameRules(ctx, g.ID, rules.Ruleset{KFactor: &k})
			So(err, ShouldBeNil)

			Convey("Then the new ruleset is stored", func() {
				got, _ := s.GetGame(ctx, g.ID)
				So(*got.Rules.KFactor, ShouldEqual, 30)
				So(updated.Rules, ShouldResemble, got.Rules)
			})
		})

		Convey("When unknown ids are requested", func() {
			_, e1 := s.GetTeam(ctx, "x")
			_, e2 := s.GetGame(ctx, "x")
			_, e3 := s.GetTournament(ctx, "x")
			_, e4 := s.GetRound(ctx, "x")
			_, e5 := s.GetTable(ctx, "x")

			Convey("Then every lookup reports ErrNotFound", func() {
				for _, err := range []error{e1, e2, e3, e4, e5} {
					So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				}
			})
		})
	})
}

func TestMemoryStoreTournamentRoster(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with a game and six players", t, func() {
		s := repository.NewMemoryStore(repository.WithIDGenerator(sequentialIDs()))
		g, _ := s.CreateGame(ctx, "Catan", rules.Ruleset{})
		var ids []string
		for i := range 6 {
			p, _ := s.CreatePlayer(ctx, repository.NewPlayer{Name: fmt.Sprintf("P%d", i)})
			ids = append(ids, p.ID)
		}

		Convey("When the roster is not a multiple of four", func() {
			_, err := s.CreateTournament(ctx, "Cup", g.ID, ids[:5])

			Convey("Then ErrInvalidRoster is returned", func() {
				So(errors.Is(err, repository.ErrInvalidRoster), ShouldBeTrue)
			})
		})

		Convey("When a player is listed twice", func() {
			_, err := s.CreateTournament(ctx, "Cup", g.ID, []string{ids[0], ids[1], ids[2], ids[0]})

			Convey("Then ErrInvalidRoster is returned", func() {
				So(errors.Is(err, repository.ErrInvalidRoster), ShouldBeTrue)
			})
		})

		Convey("When the game or a player is unknown", func() {
			_, errGame := s.CreateTournament(ctx, "Cup", "nope", ids[:4])
			_, errPlayer := s.CreateTournament(ctx, "Cup", g.ID, []string{ids[0], ids[1], ids[2], "ghost"})

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(errGame, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(errPlayer, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the roster is valid", func() {
			tourney, err := s.CreateTournament(ctx, "Cup", g.ID, ids[:4])
			So(err, ShouldBeNil)

			Convey("Then the tournament is running and the roster is copied", func() {
				So(tourney.Status, ShouldEqual, model.StatusRunning)
				tourney.PlayerIDs[0] = "mutated"
				got, _ := s.GetTournament(ctx, tourney.ID)
				So(got.PlayerIDs[0], ShouldEqual, ids[0])
				So(s.ListTournaments(ctx), ShouldHaveLength, 1)
			})
		})
	})
}

func TestMemoryStoreRounds(t *testing.T) {
	ctx := context.Background()

	Convey("Given a tournament of eight players", t, func() {
		f := newFixture(t, 8)

		Convey("When the first round is generated", func() {
			round, tables, err := f.store.CreateRound(ctx, f.tournament.ID, pairing.GenerateRound)
			So(err, ShouldBeNil)

			Convey("Then it is round one with two fully seated tables", func() {
				So(round.Index, ShouldEqual, 1)
				So(round.Locked, ShouldBeFalse)
				So(round.TableIDs, ShouldHaveLength, 2)
				So(tables, ShouldHaveLength, 2)
				for i, table := range tables {
					So(table.TableIndex, ShouldEqual, i+1)
					So(table.RoundID, ShouldEqual, round.ID)
					So(table.CreatedAt, ShouldEqual, f.clock.Now())
					for n, seat := range table.Seats {
						So(seat.SeatNumber, ShouldEqual, n+1)
					}
				}
			})

			Convey("And another round is refused while it is open", func() {
				_, _, err := f.store.CreateRound(ctx, f.tournament.ID, pairing.GenerateRound)
				So(errors.Is(err, repository.ErrOpenRound), ShouldBeTrue)
			})

			Convey("And once locked the next round sees the history", func() {
				locked, err := f.store.LockRound(ctx, round.ID)
				So(err, ShouldBeNil)
				So(locked.Locked, ShouldBeTrue)

				history, err := f.store.TournamentHistory(ctx, f.tournament.ID)
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 2)

				var seenHistory int
				next, _, err := f.store.CreateRound(ctx, f.tournament.ID,
					func(roster []pairing.Player, h []pairing.HistoricalTable) (pairing.Round, error) {
						seenHistory = len(h)
						So(roster, ShouldHaveLength, 8)
						return pairing.GenerateRound(roster, h)
					})
				So(err, ShouldBeNil)
				So(next.Index, ShouldEqual, 2)
				So(seenHistory, ShouldEqual, 2)

				rounds, err := f.store.TournamentRounds(ctx, f.tournament.ID)
				So(err, ShouldBeNil)
				So(rounds, ShouldHaveLength, 2)
			})
		})

		Convey("When the generator fails", func() {
			boom := errors.New("boom")
			_, _, err := f.store.CreateRound(ctx, f.tournament.ID,
				func([]pairing.Player, []pairing.HistoricalTable) (pairing.Round, error) {
					return pairing.Round{}, boom
				})

			Convey("Then nothing is stored", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				rounds, _ := f.store.TournamentRounds(ctx, f.tournament.ID)
				So(rounds, ShouldBeEmpty)
			})
		})
	})
}

func TestMemoryStoreSeats(t *testing.T) {
	ctx := context.Background()

	Convey("Given a generated round", t, func() {
		f := newFixture(t, 8)
		round, tables, err := f.store.CreateRound(ctx, f.tournament.ID, pairing.GenerateRound)
		So(err, ShouldBeNil)
		table := tables[0]
		ids := table.PlayerIDs()

		Convey("When the seats are reordered", func() {
			seats := []model.Seat{
				{PlayerID: ids[3], SeatNumber: 1},
				{PlayerID: ids[2], SeatNumber: 4},
				{PlayerID: ids[1], SeatNumber: 3},
				{PlayerID: ids[0], SeatNumber: 2},
			}
			got, err := f.store.UpdateSeats(ctx, table.ID, seats)

			Convey("Then they are stored sorted by seat number", func() {
				So(err, ShouldBeNil)
				So(got.PlayerIDs(), ShouldResemble, []string{ids[3], ids[0], ids[1], ids[2]})
			})
		})

		Convey("When a seat is invalid", func() {
			outsider := tables[1].PlayerIDs()[0]
			cases := [][]model.Seat{
				{{PlayerID: ids[0], SeatNumber: 1}},
				{{PlayerID: ids[0], SeatNumber: 1}, {PlayerID: ids[1], SeatNumber: 1}, {PlayerID: ids[2], SeatNumber: 3}, {PlayerID: ids[3], SeatNumber: 4}},
				{{PlayerID: ids[0], SeatNumber: 1}, {PlayerID: ids[0], SeatNumber: 2}, {PlayerID: ids[2], SeatNumber: 3}, {PlayerID: ids[3], SeatNumber: 4}},
				{{PlayerID: ids[0], SeatNumber: 0}, {PlayerID: ids[1], SeatNumber: 2}, {PlayerID: ids[2], SeatNumber: 3}, {PlayerID: ids[3], SeatNumber: 4}},
				{{PlayerID: "ghost", SeatNumber: 1}, {PlayerID: ids[1], SeatNumber: 2}, {PlayerID: ids[2], SeatNumber: 3}, {PlayerID: ids[3], SeatNumber: 4}},
			}

			Convey("Then ErrInvalidSeats is returned", func() {
				for _, seats := range cases {
					_, err := f.store.UpdateSeats(ctx, table.ID, seats)
					So(errors.Is(err, repository.ErrInvalidSeats), ShouldBeTrue)
				}
			})

			Convey("And a participant from another table may be seated", func() {
				seats := []model.Seat{
					{PlayerID: outsider, SeatNumber: 1},
					{PlayerID: ids[1], SeatNumber: 2},
					{PlayerID: ids[2], SeatNumber: 3},
					{PlayerID: ids[3], SeatNumber: 4},
				}
				_, err := f.store.UpdateSeats(ctx, table.ID, seats)
				So(err, ShouldBeNil)
			})
		})

		Convey("When the round is locked", func() {
			_, _ = f.store.LockRound(ctx, round.ID)
			_, err := f.store.UpdateSeats(ctx, table.ID, table.Seats)

			Convey("Then ErrRoundLocked is returned", func() {
				So(errors.Is(err, repository.ErrRoundLocked), ShouldBeTrue)
			})
		})

		Convey("When the table already has results", func() {
			_, _, err := f.store.ApplyResults(ctx, table.ID, settleInOrder)
			So(err, ShouldBeNil)
			_, err = f.store.UpdateSeats(ctx, table.ID, table.Seats)

			Convey("Then ErrResultsExist is returned", func() {
				So(errors.Is(err, repository.ErrResultsExist), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStoreApplyResults(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seated table", t, func() {
		f := newFixture(t, 4)
		_, tables, err := f.store.CreateRound(ctx, f.tournament.ID, pairing.GenerateRound)
		So(err, ShouldBeNil)
		table := tables[0]
		seated := table.PlayerIDs()

		Convey("When results are applied", func() {
			got, changes, err := f.store.ApplyResults(ctx, table.ID, settleInOrder)
			So(err, ShouldBeNil)

			Convey("Then points and ratings are stored", func() {
				So(got.Results, ShouldHaveLength, 4)
				So(got.Results[0].PointsAwarded, ShouldEqual, 5)
				So(changes, ShouldHaveLength, 4)
				So(changes[0].Delta, ShouldEqual, 36)
				So(changes[0].TableID, ShouldEqual, table.ID)
				So(changes[0].CreatedAt, ShouldEqual, f.clock.Now())

				winner, _ := f.store.GetPlayer(ctx, seated[0])
				So(winner.Rating, ShouldEqual, 1536)
				last, _ := f.store.GetPlayer(ctx, seated[3])
				So(last.Rating, ShouldEqual, 1464)
			})

			Convey("And the leaderboard follows the new ratings", func() {
				top, err := f.store.TopRatings(ctx, 2)
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 2)
				So(top[0].PlayerID, ShouldEqual, seated[0])
				So(top[0].Rank, ShouldEqual, 1)
				So(top[1].Rating, ShouldEqual, 1512)

				rank, err := f.store.RatingRank(ctx, seated[3])
				So(err, ShouldBeNil)
				So(rank.Rank, ShouldEqual, 4)
			})

			Convey("And history and results queries see the settlement", func() {
				history, err := f.store.RatingHistory(ctx, seated[1])
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 1)
				So(history[0].Before, ShouldEqual, 1500)
				So(history[0].After, ShouldEqual, 1512)
				So(f.store.RatingChanges(ctx), ShouldHaveLength, 4)

				byGame, err := f.store.GameResults(ctx, f.game.ID)
				So(err, ShouldBeNil)
				So(byGame, ShouldHaveLength, 4)
				So(byGame[0].TournamentID, ShouldEqual, f.tournament.ID)
				byTournament, err := f.store.TournamentResults(ctx, f.tournament.ID)
				So(err, ShouldBeNil)
				So(byTournament, ShouldResemble, byGame)
				So(f.store.AllResults(ctx), ShouldResemble, byGame)
				So(f.store.Counts(ctx), ShouldResemble, repository.Counts{Players: 4, Tournaments: 1, TablesSettled: 1})
			})

			Convey("And a second settlement is refused", func() {
				_, _, err := f.store.ApplyResults(ctx, table.ID, settleInOrder)
				So(errors.Is(err, repository.ErrResultsExist), ShouldBeTrue)
				So(f.store.RatingChanges(ctx), ShouldHaveLength, 4)
			})
		})

		Convey("When settlement fails", func() {
			_, _, err := f.store.ApplyResults(ctx, table.ID,
				func(rules.Ruleset, []string, map[string]int) (results.Settlement, error) {
					return results.Settlement{}, results.ErrSeatCount
				})

			Convey("Then nothing is written", func() {
				So(errors.Is(err, results.ErrSeatCount), ShouldBeTrue)
				got, _ := f.store.GetTable(ctx, table.ID)
				So(got.HasResults(), ShouldBeFalse)
				p, _ := f.store.GetPlayer(ctx, seated[0])
				So(p.Rating, ShouldEqual, 1500)
				So(f.store.RatingChanges(ctx), ShouldBeEmpty)
			})
		})
	})
}

func TestMemoryStoreRatings(t *testing.T) {
	ctx := context.Background()

	Convey("Given players sharing a rating", t, func() {
		s := repository.NewMemoryStore(repository.WithIDGenerator(sequentialIDs()), repository.WithDefaultRating(1200))
		a, _ := s.CreatePlayer(ctx, repository.NewPlayer{Name: "A"})
		b, _ := s.CreatePlayer(ctx, repository.NewPlayer{Name: "B"})

		Convey("Then they share the top rank", func() {
			top, err := s.TopRatings(ctx, 10)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 2)
			So(top[0].PlayerID, ShouldEqual, a.ID)
			So(top[0].Rating, ShouldEqual, 1200)
			So(top[1].Rank, ShouldEqual, 1)

			rank, err := s.RatingRank(ctx, b.ID)
			So(err, ShouldBeNil)
			So(rank.Rank, ShouldEqual, 1)
		})

		Convey("Then a non-positive limit is rejected", func() {
			_, err := s.TopRatings(ctx, 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("Then unknown players have no rank or history", func() {
			_, err := s.RatingRank(ctx, "ghost")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			_, err = s.RatingHistory(ctx, "ghost")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
