package world

import (
	"testing"

	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveToMaintainsInvariant(t *testing.T) {
	square := NewLocation("town square", "The heart of town.")
	tavern := NewLocation("tavern", "A dim tavern.")
	julie := NewLiving("julie", lang.Female, "human")

	julie.MoveTo(square, nil)
	require.Same(t, square, julie.Location())
	assert.Contains(t, square.Livings(), julie)

	julie.MoveTo(tavern, nil)
	assert.Same(t, tavern, julie.Location())
	assert.NotContains(t, square.Livings(), julie)
	assert.Contains(t, tavern.Livings(), julie)
}

type refusingHolder struct{}

func (refusingHolder) Insert(*Item, *Living) error { return Refuse("It won't fit.") }
func (refusingHolder) Remove(*Item, *Living) error { return nil }
func (refusingHolder) HolderName() string          { return "black hole" }

func TestItemMoveIsAtomic(t *testing.T) {
	square := NewLocation("town square", "")
	rock := NewItem("rock", "", "A dull rock.")
	require.NoError(t, rock.MoveTo(square, nil))
	require.Same(t, ItemHolder(square), rock.Holder())

	err := rock.MoveTo(refusingHolder{}, nil)
	require.Error(t, err)
	var refused *ActionRefused
	require.ErrorAs(t, err, &refused)
	assert.Equal(t, "It won't fit.", refused.Msg)
	// Restored to origin after the refusal.
	assert.Same(t, ItemHolder(square), rock.Holder())
	assert.Contains(t, square.Items(), rock)
}

func TestItemHolderExclusivity(t *testing.T) {
	square := NewLocation("town square", "")
	julie := NewLiving("julie", lang.Female, "human")
	julie.MoveTo(square, nil)
	chest := NewContainer("chest", "", "An oak chest.")
	require.NoError(t, chest.MoveTo(square, nil))

	coin := NewItem("coin", "", "A copper coin.")
	require.NoError(t, coin.MoveTo(square, nil))
	require.NoError(t, coin.MoveTo(julie, julie))
	assert.NotContains(t, square.Items(), coin)
	assert.Contains(t, julie.Inventory(), coin)

	require.NoError(t, coin.MoveTo(chest, julie))
	assert.Empty(t, julie.Inventory())
	assert.Contains(t, chest.Inventory(), coin)
	assert.Same(t, square, coin.Location(), "location resolves through container")
}

func TestNonTakeableItemStaysPut(t *testing.T) {
	square := NewLocation("town square", "")
	julie := NewLiving("julie", lang.Female, "human")
	julie.MoveTo(square, nil)
	statue := NewItem("statue", "a bronze statue", "A bronze statue of the founder.")
	statue.Takeable = false
	require.NoError(t, statue.MoveTo(square, nil))

	err := statue.MoveTo(julie, julie)
	var refused *ActionRefused
	require.ErrorAs(t, err, &refused)
	assert.Equal(t, "You can't take a bronze statue.", refused.Msg)
	// Restored to origin after the refusal.
	assert.Contains(t, square.Items(), statue)
	assert.Empty(t, julie.Inventory())

	wiz := NewLiving("odin", lang.Male, "human")
	wiz.Privileges["wizard"] = true
	wiz.MoveTo(square, nil)
	require.NoError(t, statue.MoveTo(wiz, wiz))
	assert.Contains(t, wiz.Inventory(), statue)
}

func TestDestroyLocationSendsLivingsToLimbo(t *testing.T) {
	limbo := NewLocation("Limbo", "The gray nothingness.")
	doomed := NewLocation("doomed", "")
	bob := NewLiving("bob", lang.Male, "human")
	bob.MoveTo(doomed, nil)
	junk := NewItem("junk", "", "")
	require.NoError(t, junk.MoveTo(doomed, nil))

	doomed.Destroy(limbo)
	assert.Same(t, limbo, bob.Location())
	assert.Contains(t, limbo.Livings(), bob)
	assert.Empty(t, doomed.Items())
	assert.Nil(t, junk.Holder())
}

func TestContainerDestroyCascades(t *testing.T) {
	square := NewLocation("square", "")
	chest := NewContainer("chest", "", "")
	require.NoError(t, chest.MoveTo(square, nil))
	coin := NewItem("coin", "", "")
	require.NoError(t, coin.MoveTo(chest, nil))

	chest.Destroy()
	assert.Empty(t, chest.Inventory())
	assert.Nil(t, coin.Holder())
	assert.NotContains(t, square.Items(), &chest.Item)
}

func TestNameResolutionPriority(t *testing.T) {
	square := NewLocation("square", "")
	cat := NewLiving("cat", lang.Neuter, "cat")
	cat.Title = "the hairy cat"
	cat.Aliases["fluffball"] = true
	cat.MoveTo(square, nil)

	assert.Same(t, cat, square.FindLiving("cat"))
	assert.Same(t, cat, square.FindLiving("fluffball"))
	assert.Same(t, cat, square.FindLiving("the hairy cat"))
	assert.Nil(t, square.FindLiving("dog"))
}

func TestDoorTraversal(t *testing.T) {
	hall := NewLocation("hall", "")
	cellar := NewLocation("cellar", "")
	door := NewDoor([]string{"down"}, cellar, "the cellar door", "A trapdoor.", false, true)
	hall.AddExit(door)

	julie := NewLiving("julie", lang.Female, "human")
	julie.MoveTo(hall, nil)

	err := hall.Exits["down"].Allow(julie)
	require.Error(t, err, "closed door refuses traversal")

	key := NewItem("rusty key", "", "")
	door.KeyCode = "rusty key"
	require.Error(t, door.Open(julie), "locked door refuses opening")
	require.NoError(t, door.Unlock(julie, key))
	require.NoError(t, door.Open(julie))
	assert.NoError(t, hall.Exits["down"].Allow(julie))
}

func TestLocationTellRouting(t *testing.T) {
	square := NewLocation("square", "")
	julie := NewPlayer("julie", lang.Female, "human")
	philip := NewPlayer("philip", lang.Male, "human")
	kate := NewPlayer("kate", lang.Female, "human")
	for _, p := range []*Player{julie, philip, kate} {
		p.MoveTo(square, nil)
	}

	square.Tell("Julie smiles.", &julie.Living, []*Living{&kate.Living}, "Julie smiles at you.")

	assert.Empty(t, julie.DrainOutput(), "actor is excluded")
	assert.Equal(t, []string{"Julie smiles."}, philip.DrainOutput())
	assert.Equal(t, []string{"Julie smiles at you."}, kate.DrainOutput())
}

func TestWiretapHearsRoomMessages(t *testing.T) {
	square := NewLocation("square", "")
	var heard []WiretapEvent
	square.Wiretap().Subscribe(&pubsub.ListenerFunc{
		Fn: func(_ string, ev pubsub.Event) error {
			heard = append(heard, ev.(WiretapEvent))
			return nil
		},
	})

	square.Broadcast("A bell tolls.", nil)
	require.Len(t, heard, 1)
	assert.Equal(t, WiretapEvent{Sender: "square", Message: "A bell tolls."}, heard[0])
}

func TestPlayerDestroyReleasesWiretaps(t *testing.T) {
	square := NewLocation("square", "")
	wiz := NewPlayer("merlin", lang.Male, "elf")
	wiz.Privileges["wizard"] = true
	square.Wiretap().Subscribe(wiz)
	wiz.RememberWiretap(square.Wiretap())
	require.Equal(t, 1, square.Wiretap().Subscribers())

	wiz.Destroy()
	assert.Zero(t, square.Wiretap().Subscribers())
	assert.True(t, wiz.Closed())
}

func TestPlayerInputQueue(t *testing.T) {
	p := NewPlayer("julie", lang.Female, "human")
	p.QueueInput("look")
	p.QueueInput("north")

	select {
	case <-p.InputAvailable():
	default:
		t.Fatal("input signal not raised")
	}
	assert.Equal(t, []string{"look", "north"}, p.PendingInput())
	assert.Empty(t, p.PendingInput())
}
