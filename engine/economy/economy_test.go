package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/spiritmaster/types"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func profile() types.Profile {
	return types.Profile{
		Name:             "tester",
		Gold:             1000,
		IncomePerSec:     5,
		Energy:           50,
		MaxEnergy:        100,
		LastIncomeClaim:  t0,
		LastEnergyUpdate: t0,
	}
}

func TestSync_AccruesIncome(t *testing.T) {
	p := Sync(profile(), t0.Add(90*time.Second))

	assert.Equal(t, 1000+450, p.Gold)
	assert.Equal(t, t0.Add(90*time.Second), p.LastIncomeClaim)
}

func TestSync_FractionalIncomeFloors(t *testing.T) {
	in := profile()
	in.IncomePerSec = 3
	p := Sync(in, t0.Add(2500*time.Millisecond))

	assert.Equal(t, 1007, p.Gold)
}

func TestSync_EnergyKeepsPartialInterval(t *testing.T) {
	p := Sync(profile(), t0.Add(12*time.Second))

	assert.Equal(t, 52, p.Energy)
	// 2 whole intervals consumed, 2s of progress kept
	assert.Equal(t, t0.Add(10*time.Second), p.LastEnergyUpdate)

	p = Sync(p, t0.Add(15*time.Second))
	assert.Equal(t, 53, p.Energy)
}

func TestSync_EnergyCapped(t *testing.T) {
	p := Sync(profile(), t0.Add(time.Hour))

	assert.Equal(t, 100, p.Energy)
}

func TestSync_NoRecoveryKeepsClock(t *testing.T) {
	p := Sync(profile(), t0.Add(4*time.Second))

	assert.Equal(t, 50, p.Energy)
	assert.Equal(t, t0, p.LastEnergyUpdate)
}

func TestSync_ClockBehind(t *testing.T) {
	p := Sync(profile(), t0.Add(-time.Minute))

	assert.Equal(t, 1000, p.Gold)
	assert.Equal(t, 50, p.Energy)
}

func TestRaid_Win(t *testing.T) {
	res, err := Raid(profile(), 5000, true)
	require.NoError(t, err)

	assert.Equal(t, 1000, res.Stolen)
	assert.Equal(t, 2000, res.Attacker.Gold)
	assert.Equal(t, 30, res.Attacker.Energy)
	assert.Equal(t, 4000, res.DefenderGold)
}

func TestRaid_LossStillCostsEnergy(t *testing.T) {
	res, err := Raid(profile(), 5000, false)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Stolen)
	assert.Equal(t, 1000, res.Attacker.Gold)
	assert.Equal(t, 30, res.Attacker.Energy)
	assert.Equal(t, 5000, res.DefenderGold)
}

func TestRaid_StolenFloors(t *testing.T) {
	res, err := Raid(profile(), 1234, true)
	require.NoError(t, err)
	assert.Equal(t, 246, res.Stolen)
}

func TestRaid_NotEnoughEnergy(t *testing.T) {
	p := profile()
	p.Energy = 19

	res, err := Raid(p, 5000, true)
	assert.ErrorIs(t, err, ErrNotEnoughEnergy)
	assert.Equal(t, 19, res.Attacker.Energy)
	assert.ErrorIs(t, CanRaid(p), ErrNotEnoughEnergy)
}

func TestSpendGold(t *testing.T) {
	p, err := SpendGold(profile(), HatchGoldCost)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Gold)

	_, err = SpendGold(p, 1)
	assert.ErrorIs(t, err, ErrNotEnoughGold)
}

func TestCraft(t *testing.T) {
	p, err := Craft(profile(), types.ItemDef{ID: "shrine", Cost: 600, IncomeBonus: 3})
	require.NoError(t, err)
	assert.Equal(t, 400, p.Gold)
	assert.Equal(t, 8, p.IncomePerSec)

	_, err = Craft(p, types.ItemDef{ID: "temple", Cost: 5000})
	assert.ErrorIs(t, err, ErrNotEnoughGold)
}
