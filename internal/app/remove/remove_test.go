package remove_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/runcap/internal/app/remove"
	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/storage/storagemock"
)

func TestServiceRun(t *testing.T) {
	tests := map[string]struct {
		req        remove.Request
		mock       func(mRepo *storagemock.MockRepository)
		expErr     bool
		expErrIs   error
		expRemoved int
	}{
		"Removing a run by ID should delete it": {
			req: remove.Request{ID: "run-1"},
			mock: func(mRepo *storagemock.MockRepository) {
				mRepo.On("DeleteRun", mock.Anything, "run-1").Once().Return(nil)
			},
			expRemoved: 1,
		},

		"Removing a missing run should fail": {
			req: remove.Request{ID: "missing"},
			mock: func(mRepo *storagemock.MockRepository) {
				mRepo.On("DeleteRun", mock.Anything, "missing").Once().Return(fmt.Errorf("not here: %w", model.ErrNotFound))
			},
			expErr:   true,
			expErrIs: model.ErrNotFound,
		},

		"Removing all runs should delete the whole history": {
			req: remove.Request{All: true},
			mock: func(mRepo *storagemock.MockRepository) {
				mRepo.On("DeleteAllRuns", mock.Anything).Once().Return(3, nil)
			},
			expRemoved: 3,
		},

		"Removing all runs with an explicit ID should fail": {
			req:      remove.Request{ID: "run-1", All: true},
			mock:     func(mRepo *storagemock.MockRepository) {},
			expErr:   true,
			expErrIs: model.ErrNotValid,
		},

		"Removing without an ID should fail": {
			req:      remove.Request{},
			mock:     func(mRepo *storagemock.MockRepository) {},
			expErr:   true,
			expErrIs: model.ErrNotValid,
		},

		"A repository failure should fail the removal": {
			req: remove.Request{All: true},
			mock: func(mRepo *storagemock.MockRepository) {
				mRepo.On("DeleteAllRuns", mock.Anything).Once().Return(0, fmt.Errorf("something"))
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mRepo := &storagemock.MockRepository{}
			test.mock(mRepo)

			svc, err := remove.NewService(remove.ServiceConfig{
				Repository: mRepo,
				Logger:     log.Noop,
			})
			require.NoError(err)

			removed, err := svc.Run(context.TODO(), test.req)

			if test.expErr {
				assert.Error(err)
				if test.expErrIs != nil {
					assert.ErrorIs(err, test.expErrIs)
				}
			} else {
				assert.NoError(err)
				assert.Equal(test.expRemoved, removed)
			}

			mRepo.AssertExpectations(t)
		})
	}
}
